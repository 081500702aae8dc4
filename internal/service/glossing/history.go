package glossing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// History returns the overwritten values of a phrase's gloss, newest first.
// Soft-deleted phrases keep their history; phrases of another language are
// reported as domain.ErrNotFound.
func (s *Service) History(ctx context.Context, languageID uuid.UUID, phraseID int64) ([]domain.GlossHistoryEntry, error) {
	if _, err := s.phrases.Get(ctx, languageID, phraseID); err != nil {
		return nil, err
	}

	entries, err := s.glosses.History(ctx, phraseID)
	if err != nil {
		return nil, fmt.Errorf("get gloss history: %w", err)
	}
	return entries, nil
}
