package partition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
	"github.com/heartmarshall/interlinear-backend/pkg/ctxutil"
)

// sharedReconcileTimeout bounds a collapsed reconcile, which outlives the
// cancellation of any single caller.
const sharedReconcileTimeout = 30 * time.Second

// Reconcile creates a singleton phrase for every word of the verse that no
// active phrase of the language covers. The acting user from ctx, if any, is
// recorded as creator. Idempotent.
//
// Concurrent reconciles of the same (language, verse, acting user) in this
// process share one execution. The shared run is detached from each caller's
// cancellation: a caller that gives up gets ctx.Err() while the others still
// receive the shared result. Across processes, a lost race surfaces as a
// unique violation on the active-word index; the whole pass is then retried
// and finds the words covered. Must not be called inside a caller's
// transaction.
func (s *Service) Reconcile(ctx context.Context, languageID uuid.UUID, verseID string) error {
	key := languageID.String() + "/" + verseID
	if userID, ok := ctxutil.UserIDFromCtx(ctx); ok {
		key += "/" + userID.String()
	}

	shared := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(shared, sharedReconcileTimeout)
		defer cancel()
		return nil, s.reconcile(runCtx, languageID, verseID)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) reconcile(ctx context.Context, languageID uuid.UUID, verseID string) error {
	words, err := s.catalog.GetWordsForVerse(ctx, verseID)
	if err != nil {
		return fmt.Errorf("get words for verse: %w", err)
	}
	if len(words) == 0 {
		return nil
	}

	wordIDs := lo.Map(words, func(w domain.Word, _ int) string { return w.ID })
	createdBy := ctxutil.UserIDPtrFromCtx(ctx)

	attempts := max(s.cfg.ReconcileAttempts, 1)
	for attempt := 1; ; attempt++ {
		var created int
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			uncovered, err := s.phrases.UncoveredWords(txCtx, languageID, wordIDs)
			if err != nil {
				return fmt.Errorf("find uncovered words: %w", err)
			}
			if len(uncovered) == 0 {
				return nil
			}

			created, err = s.phrases.CreateSingletons(txCtx, languageID, uncovered, createdBy)
			if err != nil {
				return fmt.Errorf("create singleton phrases: %w", err)
			}
			return nil
		})
		if err == nil {
			if created > 0 {
				s.log.InfoContext(ctx, "verse reconciled",
					slog.String("language_id", languageID.String()),
					slog.String("verse_id", verseID),
					slog.Int("created", created),
				)
			}
			return nil
		}

		if !errors.Is(err, domain.ErrAlreadyExists) || attempt >= attempts {
			return err
		}

		s.log.DebugContext(ctx, "reconcile lost race, retrying",
			slog.String("verse_id", verseID),
			slog.Int("attempt", attempt),
		)
	}
}

// ReconcileVerses reconciles many verses with at most cfg.ReconcileWorkers in
// flight. The first failure cancels the remaining verses.
func (s *Service) ReconcileVerses(ctx context.Context, languageID uuid.UUID, verseIDs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.ReconcileWorkers, 1))

	for _, verseID := range lo.Uniq(verseIDs) {
		g.Go(func() error {
			if err := s.Reconcile(gctx, languageID, verseID); err != nil {
				return fmt.Errorf("reconcile verse %s: %w", verseID, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// PhrasesForVerse reconciles the verse and returns its active phrases with
// their current glosses, in reading order.
func (s *Service) PhrasesForVerse(ctx context.Context, languageID uuid.UUID, verseID string) ([]domain.Phrase, error) {
	if err := s.Reconcile(ctx, languageID, verseID); err != nil {
		return nil, err
	}

	phrases, err := s.phrases.GetActiveByVerse(ctx, languageID, verseID)
	if err != nil {
		return nil, fmt.Errorf("get phrases for verse: %w", err)
	}
	return phrases, nil
}
