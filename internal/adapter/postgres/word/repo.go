// Package word reads the external word catalog. The catalog is owned by the
// surrounding application; this package never writes to it.
package word

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// Repo provides read access to words backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new word repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type wordRow struct {
	ID            string `db:"id"`
	VerseID       string `db:"verse_id"`
	LexicalFormID string `db:"lexical_form_id"`
}

const getWordsForVerseSQL = `
SELECT id, verse_id, lexical_form_id
FROM words
WHERE verse_id = $1
ORDER BY position, id`

// GetWordsForVerse returns the words of a verse in reading order.
// An unknown verse yields an empty slice.
func (r *Repo) GetWordsForVerse(ctx context.Context, verseID string) ([]domain.Word, error) {
	var rows []wordRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, getWordsForVerseSQL, verseID); err != nil {
		return nil, fmt.Errorf("get words for verse %s: %w", verseID, err)
	}

	words := make([]domain.Word, len(rows))
	for i, row := range rows {
		words[i] = domain.Word(row)
	}
	return words, nil
}

// VerseIDs lists the distinct verse ids of the catalog in sorted order,
// optionally restricted to ids starting with prefix (e.g. a book code).
func (r *Repo) VerseIDs(ctx context.Context, prefix string) ([]string, error) {
	q := postgres.Builder().
		Select("DISTINCT verse_id").
		From("words").
		OrderBy("verse_id")
	if prefix != "" {
		q = q.Where(squirrel.Like{"verse_id": escapeLike(prefix) + "%"})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build verse ids query: %w", err)
	}

	var ids []string
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list verse ids: %w", err)
	}
	return ids, nil
}

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
