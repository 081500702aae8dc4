package glossing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// UpdateGloss edits the gloss of one phrase.
//
// The write is conditional: when the merged text and state equal the current
// ones (a missing gloss counts as no text, UNAPPROVED) nothing is written and
// no history is recorded. Otherwise the gloss is upserted with Source USER and
// the overwritten value is appended to history, in one transaction.
//
// After commit, a move from unapproved into APPROVED with an ApprovalMethod
// publishes one approved_gloss event.
func (s *Service) UpdateGloss(ctx context.Context, input UpdateGlossInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	var events []domain.TrackingEvent

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.phrases.GetActive(txCtx, input.LanguageID, input.PhraseID); err != nil {
			return err
		}

		found, err := s.glosses.FindForUpdate(txCtx, input.LanguageID, []int64{input.PhraseID})
		if err != nil {
			return fmt.Errorf("find gloss: %w", err)
		}
		prev := current(found, input.PhraseID)
		wasUnapproved := prev.IsUnapproved()

		now := s.now()
		next := domain.Gloss{
			PhraseID:  input.PhraseID,
			State:     domain.GlossStateUnapproved,
			Source:    domain.GlossSourceUser,
			UpdatedAt: now,
			UpdatedBy: &input.UserID,
		}
		if prev != nil {
			next.Gloss = prev.Gloss
			next.State = prev.State
		}
		if input.Gloss != nil {
			next.Gloss = domain.NormalizeGloss(*input.Gloss)
		}
		if input.State != nil {
			next.State = *input.State
		}

		if next.SameValue(prev) {
			return nil
		}

		wrote, err := s.glosses.Upsert(txCtx, next)
		if err != nil {
			return fmt.Errorf("upsert gloss: %w", err)
		}
		if !wrote {
			return nil
		}

		if err := s.glosses.AppendHistory(txCtx, domain.NewHistoryEntry(input.PhraseID, prev, now, input.UserID)); err != nil {
			return fmt.Errorf("append gloss history: %w", err)
		}

		if domain.ShouldTrackApproval(wasUnapproved, next.State, input.ApprovalMethod) {
			events = append(events, domain.NewApprovedGlossEvent(
				input.LanguageID, input.UserID, input.PhraseID, *input.ApprovalMethod, now,
			))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.DebugContext(ctx, "gloss updated",
		slog.Int64("phrase_id", input.PhraseID),
		slog.Int("events", len(events)),
	)
	s.publish(ctx, events)
	return nil
}
