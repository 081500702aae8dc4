package partition

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// LinkWords groups wordIDs into one new phrase. Every active phrase covering
// any of the words is soft-deleted by userID; their glosses stay attached to
// the deleted ids and the new phrase starts without a gloss.
//
// Fails with domain.ErrWordsLinked (a domain.ErrConflict) when one of the
// words already belongs to a multi-word phrase: the caller must unlink it
// first. All or nothing.
func (s *Service) LinkWords(ctx context.Context, languageID uuid.UUID, wordIDs []string, userID uuid.UUID) error {
	input := LinkWordsInput{LanguageID: languageID, WordIDs: wordIDs, UserID: userID}
	if err := input.Validate(s.cfg.MaxWordsPerPhrase); err != nil {
		return err
	}

	ids := lo.Uniq(wordIDs)
	var created *domain.Phrase

	err := s.tx.RunSerializable(ctx, func(txCtx context.Context) error {
		if err := s.phrases.LockWords(txCtx, languageID, ids); err != nil {
			return fmt.Errorf("lock words: %w", err)
		}

		existing, err := s.phrases.GetActiveByWords(txCtx, languageID, ids)
		if err != nil {
			return fmt.Errorf("get phrases by words: %w", err)
		}

		for _, p := range existing {
			if p.IsMultiWord() {
				return domain.ErrWordsLinked
			}
		}

		if len(existing) > 0 {
			phraseIDs := lo.Map(existing, func(p domain.Phrase, _ int) int64 { return p.ID })
			if _, err := s.phrases.SoftDelete(txCtx, languageID, phraseIDs, userID); err != nil {
				return fmt.Errorf("soft delete superseded phrases: %w", err)
			}
		}

		created, err = s.phrases.Create(txCtx, languageID, ids, &userID)
		if err != nil {
			return fmt.Errorf("create phrase: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "words linked",
		slog.String("language_id", languageID.String()),
		slog.Int64("phrase_id", created.ID),
		slog.Int("words", len(ids)),
	)
	return nil
}

// Unlink soft-deletes an active phrase of the language. A missing, foreign or
// already deleted phrase is a silent no-op.
//
// The phrase's words are left uncovered: no replacement singletons are
// created here. The next Reconcile of the verse covers them again, so callers
// that need immediate coverage call Reconcile themselves.
func (s *Service) Unlink(ctx context.Context, languageID uuid.UUID, phraseID int64, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return domain.NewValidationError("user_id", "required")
	}

	var deleted int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.phrases.SoftDelete(txCtx, languageID, []int64{phraseID}, userID)
		if err != nil {
			return fmt.Errorf("soft delete phrase: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if deleted == 0 {
		s.log.DebugContext(ctx, "unlink matched no active phrase",
			slog.String("language_id", languageID.String()),
			slog.Int64("phrase_id", phraseID),
		)
	}
	return nil
}

// ExistsForLanguage reports whether every id is an active phrase of the
// language. An empty list is trivially true.
func (s *Service) ExistsForLanguage(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (bool, error) {
	ids := lo.Uniq(phraseIDs)
	if len(ids) == 0 {
		return true, nil
	}

	n, err := s.phrases.CountActive(ctx, languageID, ids)
	if err != nil {
		return false, fmt.Errorf("count active phrases: %w", err)
	}
	return n == len(ids), nil
}
