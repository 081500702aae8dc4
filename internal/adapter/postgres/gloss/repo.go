// Package gloss implements the Gloss repository using PostgreSQL: the current
// gloss of each phrase, its append-only history, and the approved-gloss
// aggregation behind suggestions.
package gloss

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	postgres "github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// Repo provides gloss persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new gloss repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Row types
// ---------------------------------------------------------------------------

type glossRow struct {
	PhraseID  int64      `db:"phrase_id"`
	Gloss     *string    `db:"gloss"`
	State     string     `db:"state"`
	Source    string     `db:"source"`
	UpdatedAt time.Time  `db:"updated_at"`
	UpdatedBy *uuid.UUID `db:"updated_by"`
}

func (r glossRow) toDomain() domain.Gloss {
	return domain.Gloss{
		PhraseID:  r.PhraseID,
		Gloss:     r.Gloss,
		State:     domain.GlossState(r.State),
		Source:    domain.GlossSource(r.Source),
		UpdatedAt: r.UpdatedAt,
		UpdatedBy: r.UpdatedBy,
	}
}

type historyRow struct {
	ID         int64      `db:"id"`
	PhraseID   int64      `db:"phrase_id"`
	Gloss      *string    `db:"gloss"`
	State      string     `db:"state"`
	Source     *string    `db:"source"`
	UpdatedAt  *time.Time `db:"updated_at"`
	UpdatedBy  *uuid.UUID `db:"updated_by"`
	RecordedAt time.Time  `db:"recorded_at"`
	RecordedBy uuid.UUID  `db:"recorded_by"`
}

func (r historyRow) toDomain() domain.GlossHistoryEntry {
	e := domain.GlossHistoryEntry{
		ID:         r.ID,
		PhraseID:   r.PhraseID,
		Gloss:      r.Gloss,
		State:      domain.GlossState(r.State),
		UpdatedAt:  r.UpdatedAt,
		UpdatedBy:  r.UpdatedBy,
		RecordedAt: r.RecordedAt,
		RecordedBy: r.RecordedBy,
	}
	if r.Source != nil {
		src := domain.GlossSource(*r.Source)
		e.Source = &src
	}
	return e
}

type countRow struct {
	LexicalFormID string `db:"lexical_form_id"`
	Gloss         string `db:"gloss"`
	Count         int    `db:"n"`
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

// Locks the phrase rows rather than the gloss rows so that writers of a
// phrase without a gloss yet are serialized too. The predicate is re-checked
// on the locked row version, so a phrase soft-deleted by a transaction we
// waited on drops out.
const lockPhrasesSQL = `
SELECT id FROM phrases
WHERE id = ANY($1) AND language_id = $2 AND deleted_at IS NULL
ORDER BY id
FOR UPDATE`

const findSQL = `
SELECT phrase_id, gloss, state, source, updated_at, updated_by
FROM glosses
WHERE phrase_id = ANY($1)`

const upsertSQL = `
INSERT INTO glosses (phrase_id, gloss, state, source, updated_at, updated_by)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (phrase_id) DO UPDATE SET
    gloss      = EXCLUDED.gloss,
    state      = EXCLUDED.state,
    source     = EXCLUDED.source,
    updated_at = EXCLUDED.updated_at,
    updated_by = EXCLUDED.updated_by
WHERE (glosses.gloss, glosses.state) IS DISTINCT FROM (EXCLUDED.gloss, EXCLUDED.state)`

const appendHistorySQL = `
INSERT INTO gloss_history (phrase_id, gloss, state, source, updated_at, updated_by, recorded_at, recorded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const historySQL = `
SELECT id, phrase_id, gloss, state, source, updated_at, updated_by, recorded_at, recorded_by
FROM gloss_history
WHERE phrase_id = $1
ORDER BY recorded_at DESC, id DESC`

const countApprovedSQL = `
SELECT w.lexical_form_id, g.gloss, count(DISTINCT g.phrase_id) AS n
FROM glosses g
JOIN phrases p       ON p.id = g.phrase_id
JOIN phrase_words pw ON pw.phrase_id = p.id
JOIN words w         ON w.id = pw.word_id
WHERE p.language_id = $1
  AND p.deleted_at IS NULL
  AND g.state = 'APPROVED'
  AND g.gloss IS NOT NULL
  AND g.gloss <> ''
  AND w.lexical_form_id = ANY($2)
GROUP BY w.lexical_form_id, g.gloss`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// FindForUpdate locks the active phrases phraseIDs of the language until the
// end of the transaction and returns their current glosses keyed by phrase
// id. Phrases without a gloss are absent from the map. Fails with
// domain.ErrNotFound, locking nothing further, when any phrase is missing,
// foreign or soft-deleted at lock time.
func (r *Repo) FindForUpdate(ctx context.Context, languageID uuid.UUID, phraseIDs []int64) (map[int64]domain.Gloss, error) {
	result := make(map[int64]domain.Gloss, len(phraseIDs))
	if len(phraseIDs) == 0 {
		return result, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	var locked []int64
	if err := pgxscan.Select(ctx, q, &locked, lockPhrasesSQL, phraseIDs, languageID); err != nil {
		return nil, postgres.MapError(err, "phrases", phraseIDs)
	}
	if want := len(lo.Uniq(phraseIDs)); len(locked) < want {
		missing, _ := lo.Difference(phraseIDs, locked)
		return nil, fmt.Errorf("phrases %v: %w", lo.Uniq(missing), domain.ErrNotFound)
	}

	var rows []glossRow
	if err := pgxscan.Select(ctx, q, &rows, findSQL, phraseIDs); err != nil {
		return nil, postgres.MapError(err, "glosses", phraseIDs)
	}

	for _, row := range rows {
		result[row.PhraseID] = row.toDomain()
	}
	return result, nil
}

// History returns the history of a phrase, newest first.
func (r *Repo) History(ctx context.Context, phraseID int64) ([]domain.GlossHistoryEntry, error) {
	var rows []historyRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, historySQL, phraseID); err != nil {
		return nil, postgres.MapError(err, "gloss history", phraseID)
	}

	entries := make([]domain.GlossHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toDomain()
	}
	return entries, nil
}

// CountApprovedByLexicalForm counts, per lexical form and gloss text, the
// active phrases of the language whose current gloss is approved and
// non-empty and that contain a word of the form. Unordered.
func (r *Repo) CountApprovedByLexicalForm(ctx context.Context, languageID uuid.UUID, lexicalFormIDs []string) ([]domain.GlossCount, error) {
	if len(lexicalFormIDs) == 0 {
		return []domain.GlossCount{}, nil
	}

	var rows []countRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, countApprovedSQL, languageID, lexicalFormIDs); err != nil {
		return nil, fmt.Errorf("count approved glosses: %w", err)
	}

	counts := make([]domain.GlossCount, len(rows))
	for i, row := range rows {
		counts[i] = domain.GlossCount(row)
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert writes g as the current gloss of its phrase unless the stored text
// and state already equal g's. Reports whether a row was written.
func (r *Repo) Upsert(ctx context.Context, g domain.Gloss) (bool, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, upsertSQL, upsertArgs(g)...)
	if err != nil {
		return false, postgres.MapError(err, "gloss", g.PhraseID)
	}
	return tag.RowsAffected() == 1, nil
}

// UpsertMany applies Upsert to every gloss in one batch round-trip.
// Returns the number of rows written.
func (r *Repo) UpsertMany(ctx context.Context, glosses []domain.Gloss) (int, error) {
	if len(glosses) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, g := range glosses {
		batch.Queue(upsertSQL, upsertArgs(g)...)
	}

	br := postgres.QuerierFromCtx(ctx, r.db).SendBatch(ctx, batch)
	defer br.Close()

	written := 0
	for _, g := range glosses {
		tag, err := br.Exec()
		if err != nil {
			return written, postgres.MapError(err, "gloss", g.PhraseID)
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

// AppendHistory inserts history entries in one batch round-trip.
func (r *Repo) AppendHistory(ctx context.Context, entries ...domain.GlossHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		var src *string
		if e.Source != nil {
			s := string(*e.Source)
			src = &s
		}
		batch.Queue(appendHistorySQL,
			e.PhraseID, e.Gloss, string(e.State), src, e.UpdatedAt, e.UpdatedBy, e.RecordedAt, e.RecordedBy,
		)
	}

	br := postgres.QuerierFromCtx(ctx, r.db).SendBatch(ctx, batch)
	defer br.Close()

	for _, e := range entries {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "gloss history", e.PhraseID)
		}
	}
	return nil
}

func upsertArgs(g domain.Gloss) []any {
	return []any{g.PhraseID, g.Gloss, string(g.State), string(g.Source), g.UpdatedAt, g.UpdatedBy}
}
