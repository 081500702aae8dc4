// Package suggestion ranks previously approved glosses as candidates for the
// words of a verse.
package suggestion

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

type wordCatalog interface {
	GetWordsForVerse(ctx context.Context, verseID string) ([]domain.Word, error)
}

type glossCounter interface {
	CountApprovedByLexicalForm(ctx context.Context, languageID uuid.UUID, lexicalFormIDs []string) ([]domain.GlossCount, error)
}

// Service implements the suggestion ranker. It never writes.
type Service struct {
	log     *slog.Logger
	catalog wordCatalog
	counts  glossCounter
}

// NewService creates a new suggestion service.
func NewService(logger *slog.Logger, catalog wordCatalog, counts glossCounter) *Service {
	return &Service{
		log:     logger.With("service", "suggestion"),
		catalog: catalog,
		counts:  counts,
	}
}

// SuggestionsForVerse returns, per lexical form of the verse's words, the
// approved gloss texts used for that form in the language. Texts are ordered
// by how many active phrases carry them, most frequent first, ties by text.
// Forms without any approved gloss are omitted.
func (s *Service) SuggestionsForVerse(ctx context.Context, languageID uuid.UUID, verseID string) (map[string][]string, error) {
	words, err := s.catalog.GetWordsForVerse(ctx, verseID)
	if err != nil {
		return nil, fmt.Errorf("get words for verse: %w", err)
	}

	forms := lo.Uniq(lo.FilterMap(words, func(w domain.Word, _ int) (string, bool) {
		return w.LexicalFormID, w.LexicalFormID != ""
	}))
	if len(forms) == 0 {
		return map[string][]string{}, nil
	}

	counts, err := s.counts.CountApprovedByLexicalForm(ctx, languageID, forms)
	if err != nil {
		return nil, fmt.Errorf("count approved glosses: %w", err)
	}

	out := rankSuggestions(counts)
	s.log.DebugContext(ctx, "suggestions ranked",
		slog.String("verse_id", verseID),
		slog.Int("forms", len(forms)),
		slog.Int("suggested", len(out)),
	)
	return out, nil
}

// rankSuggestions groups counts by lexical form and orders each group by
// count descending, then gloss ascending. Duplicate (form, gloss) rows are
// summed and empty glosses dropped.
func rankSuggestions(counts []domain.GlossCount) map[string][]string {
	type key struct{ form, gloss string }
	totals := make(map[key]int)
	for _, c := range counts {
		if c.Gloss == "" || c.Count <= 0 {
			continue
		}
		totals[key{c.LexicalFormID, c.Gloss}] += c.Count
	}

	byForm := make(map[string][]domain.GlossCount)
	for k, n := range totals {
		byForm[k.form] = append(byForm[k.form], domain.GlossCount{LexicalFormID: k.form, Gloss: k.gloss, Count: n})
	}

	out := make(map[string][]string, len(byForm))
	for form, group := range byForm {
		slices.SortFunc(group, func(a, b domain.GlossCount) int {
			if c := cmp.Compare(b.Count, a.Count); c != 0 {
				return c
			}
			return cmp.Compare(a.Gloss, b.Gloss)
		})
		out[form] = lo.Map(group, func(c domain.GlossCount, _ int) string { return c.Gloss })
	}
	return out
}
