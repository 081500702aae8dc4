// Package glossing owns the gloss of each phrase: the UNAPPROVED/APPROVED
// workflow, the append-only history of overwritten values, and the decision
// of which approvals are reported to analytics.
package glossing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type phraseRepo interface {
	GetActive(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error)
	Get(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error)
}

// phraseValidator is implemented by partition.Service.
type phraseValidator interface {
	ExistsForLanguage(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (bool, error)
}

type glossRepo interface {
	FindForUpdate(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (map[int64]domain.Gloss, error)
	Upsert(ctx context.Context, g domain.Gloss) (bool, error)
	UpsertMany(ctx context.Context, glosses []domain.Gloss) (int, error)
	AppendHistory(ctx context.Context, entries ...domain.GlossHistoryEntry) error
	History(ctx context.Context, phraseID int64) ([]domain.GlossHistoryEntry, error)
}

type trackingPublisher interface {
	PublishMany(ctx context.Context, events []domain.TrackingEvent) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the gloss workflow.
type Service struct {
	log       *slog.Logger
	phrases   phraseRepo
	validator phraseValidator
	glosses   glossRepo
	tracking  trackingPublisher
	tx        txManager
	now       func() time.Time
}

// NewService creates a new glossing service.
func NewService(
	logger *slog.Logger,
	phrases phraseRepo,
	validator phraseValidator,
	glosses glossRepo,
	tracking trackingPublisher,
	tx txManager,
) *Service {
	return &Service{
		log:       logger.With("service", "glossing"),
		phrases:   phrases,
		validator: validator,
		glosses:   glosses,
		tracking:  tracking,
		tx:        tx,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// publish hands events to the tracking publisher. Tracking is best effort:
// failures are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, events []domain.TrackingEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.tracking.PublishMany(ctx, events); err != nil {
		s.log.WarnContext(ctx, "publish tracking events failed",
			slog.Int("count", len(events)),
			slog.String("error", err.Error()),
		)
	}
}

// current returns the gloss of phraseID from a FindForUpdate result, or nil.
func current(glosses map[int64]domain.Gloss, phraseID int64) *domain.Gloss {
	g, ok := glosses[phraseID]
	if !ok {
		return nil
	}
	return &g
}
