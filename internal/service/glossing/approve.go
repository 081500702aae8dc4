package glossing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// ApproveAll approves many phrases of one language in a single transaction.
//
// Every phrase must be an active phrase of the language, otherwise the call
// fails with domain.ErrNotFound and nothing is applied. Each phrase is forced
// to APPROVED with the supplied text, or its current text when the supplied
// one is empty. Unchanged phrases are not written and get no history.
//
// After commit, the phrases that were unapproved before the batch and carry
// an ApprovalMethod are reported in one PublishMany call.
func (s *Service) ApproveAll(ctx context.Context, input ApproveAllInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if len(input.Phrases) == 0 {
		return nil
	}

	ids := lo.Map(input.Phrases, func(p ApprovePhrase, _ int) int64 { return p.PhraseID })
	var (
		events  []domain.TrackingEvent
		written int
	)

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.validator.ExistsForLanguage(txCtx, input.LanguageID, ids)
		if err != nil {
			return fmt.Errorf("validate phrases: %w", err)
		}
		if !ok {
			return fmt.Errorf("phrases of language %s: %w", input.LanguageID, domain.ErrNotFound)
		}

		found, err := s.glosses.FindForUpdate(txCtx, input.LanguageID, ids)
		if err != nil {
			return fmt.Errorf("find glosses: %w", err)
		}

		now := s.now()
		var (
			changed []domain.Gloss
			history []domain.GlossHistoryEntry
		)

		for _, p := range input.Phrases {
			prev := current(found, p.PhraseID)

			next := domain.Gloss{
				PhraseID:  p.PhraseID,
				Gloss:     domain.NormalizeGloss(p.Gloss),
				State:     domain.GlossStateApproved,
				Source:    domain.GlossSourceUser,
				UpdatedAt: now,
				UpdatedBy: &input.UserID,
			}
			if next.Gloss == nil && prev != nil {
				next.Gloss = prev.Gloss
			}

			if domain.ShouldTrackApproval(prev.IsUnapproved(), next.State, p.ApprovalMethod) {
				events = append(events, domain.NewApprovedGlossEvent(
					input.LanguageID, input.UserID, p.PhraseID, *p.ApprovalMethod, now,
				))
			}

			if next.SameValue(prev) {
				continue
			}
			changed = append(changed, next)
			history = append(history, domain.NewHistoryEntry(p.PhraseID, prev, now, input.UserID))
		}

		written, err = s.glosses.UpsertMany(txCtx, changed)
		if err != nil {
			return fmt.Errorf("upsert glosses: %w", err)
		}

		if err := s.glosses.AppendHistory(txCtx, history...); err != nil {
			return fmt.Errorf("append gloss history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "glosses approved",
		slog.String("language_id", input.LanguageID.String()),
		slog.Int("phrases", len(input.Phrases)),
		slog.Int("written", written),
		slog.Int("events", len(events)),
	)
	s.publish(ctx, events)
	return nil
}
