package tracking

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// LogPublisher writes one structured log line per event. It is the default
// sink when no Redis stream is configured.
type LogPublisher struct {
	log *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{log: logger.With("publisher", "log")}
}

// PublishMany never fails.
func (p *LogPublisher) PublishMany(ctx context.Context, events []domain.TrackingEvent) error {
	for _, e := range events {
		p.log.InfoContext(ctx, "tracking event",
			slog.String("id", e.ID.String()),
			slog.String("type", e.Type.String()),
			slog.String("language_id", e.LanguageID.String()),
			slog.String("user_id", e.UserID.String()),
			slog.Int64("phrase_id", e.PhraseID),
			slog.String("method", e.Method.String()),
			slog.Time("created_at", e.CreatedAt),
		)
	}
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishMany(context.Context, []domain.TrackingEvent) error { return nil }
