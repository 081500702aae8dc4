// Package phrase implements the Phrase repository using PostgreSQL.
//
// Active membership is mirrored onto phrase_words.deleted_at so that the
// partial unique index ux_phrase_words_active rejects a second active phrase
// for the same (language, word). Every query on active phrases filters
// deleted_at IS NULL explicitly.
package phrase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// Repo provides phrase persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new phrase repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Row types
// ---------------------------------------------------------------------------

type phraseRow struct {
	ID         int64      `db:"id"`
	LanguageID uuid.UUID  `db:"language_id"`
	WordIDs    []string   `db:"word_ids"`
	CreatedAt  time.Time  `db:"created_at"`
	CreatedBy  *uuid.UUID `db:"created_by"`
	DeletedAt  *time.Time `db:"deleted_at"`
	DeletedBy  *uuid.UUID `db:"deleted_by"`
}

func (r phraseRow) toDomain() domain.Phrase {
	return domain.Phrase{
		ID:         r.ID,
		LanguageID: r.LanguageID,
		WordIDs:    r.WordIDs,
		CreatedAt:  r.CreatedAt,
		CreatedBy:  r.CreatedBy,
		DeletedAt:  r.DeletedAt,
		DeletedBy:  r.DeletedBy,
	}
}

type phraseGlossRow struct {
	phraseRow
	GlossPhraseID  *int64     `db:"gloss_phrase_id"`
	Gloss          *string    `db:"gloss"`
	GlossState     *string    `db:"gloss_state"`
	GlossSource    *string    `db:"gloss_source"`
	GlossUpdatedAt *time.Time `db:"gloss_updated_at"`
	GlossUpdatedBy *uuid.UUID `db:"gloss_updated_by"`
}

func (r phraseGlossRow) toDomain() domain.Phrase {
	p := r.phraseRow.toDomain()
	if r.GlossPhraseID != nil {
		p.Gloss = &domain.Gloss{
			PhraseID:  *r.GlossPhraseID,
			Gloss:     r.Gloss,
			State:     domain.GlossState(deref(r.GlossState)),
			Source:    domain.GlossSource(deref(r.GlossSource)),
			UpdatedAt: deref(r.GlossUpdatedAt),
			UpdatedBy: r.GlossUpdatedBy,
		}
	}
	return p
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

const uncoveredWordsSQL = `
SELECT u.word_id
FROM unnest($2::text[]) WITH ORDINALITY AS u(word_id, ord)
WHERE NOT EXISTS (
    SELECT 1 FROM phrase_words pw
    WHERE pw.language_id = $1
      AND pw.word_id = u.word_id
      AND pw.deleted_at IS NULL
)
ORDER BY u.ord`

const createSQL = `
WITH p AS (
    INSERT INTO phrases (language_id, created_by)
    VALUES ($1, $2)
    RETURNING id, created_at
), w AS (
    INSERT INTO phrase_words (phrase_id, word_id, language_id)
    SELECT p.id, u.word_id, $1
    FROM p, unnest($3::text[]) AS u(word_id)
)
SELECT id, created_at FROM p`

const softDeleteSQL = `
WITH del AS (
    UPDATE phrases
    SET deleted_at = now(), deleted_by = $3
    WHERE language_id = $1 AND id = ANY($2) AND deleted_at IS NULL
    RETURNING id, deleted_at
), members AS (
    UPDATE phrase_words pw
    SET deleted_at = del.deleted_at
    FROM del
    WHERE pw.phrase_id = del.id
)
SELECT count(*) FROM del`

const lockWordSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

// selectPhrases is the base query for phrases with their word ids aggregated
// in reading order. Callers add filters and ordering.
func selectPhrases() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(
			"p.id", "p.language_id", "p.created_at", "p.created_by", "p.deleted_at", "p.deleted_by",
			"array_agg(pw.word_id ORDER BY w.position, pw.word_id) AS word_ids",
		).
		From("phrases p").
		Join("phrase_words pw ON pw.phrase_id = p.id").
		Join("words w ON w.id = pw.word_id").
		GroupBy("p.id")
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// UncoveredWords returns the subset of wordIDs not covered by any active
// phrase of the language, preserving input order.
func (r *Repo) UncoveredWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]string, error) {
	if len(wordIDs) == 0 {
		return []string{}, nil
	}

	var uncovered []string
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &uncovered, uncoveredWordsSQL, languageID, wordIDs); err != nil {
		return nil, fmt.Errorf("find uncovered words: %w", err)
	}
	if uncovered == nil {
		uncovered = []string{}
	}
	return uncovered, nil
}

// GetActiveByWords returns the active phrases of the language that contain
// any of wordIDs, each with its full word list.
func (r *Repo) GetActiveByWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) ([]domain.Phrase, error) {
	if len(wordIDs) == 0 {
		return []domain.Phrase{}, nil
	}

	query, args, err := selectPhrases().
		Where(squirrel.Eq{"p.language_id": languageID}).
		Where("p.deleted_at IS NULL").
		Where(squirrel.Expr(
			"p.id IN (SELECT phrase_id FROM phrase_words WHERE language_id = ? AND deleted_at IS NULL AND word_id = ANY(?))",
			languageID, wordIDs,
		)).
		OrderBy("p.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build phrases by words query: %w", err)
	}

	return r.selectMany(ctx, query, args)
}

// GetActiveByVerse returns the active phrases of the language that cover
// words of the verse, with their current gloss attached, ordered by the
// position of their first word.
func (r *Repo) GetActiveByVerse(ctx context.Context, languageID uuid.UUID, verseID string) ([]domain.Phrase, error) {
	query, args, err := selectPhrases().
		Columns(
			"g.phrase_id AS gloss_phrase_id", "g.gloss", "g.state AS gloss_state",
			"g.source AS gloss_source", "g.updated_at AS gloss_updated_at", "g.updated_by AS gloss_updated_by",
		).
		LeftJoin("glosses g ON g.phrase_id = p.id").
		Where(squirrel.Eq{"p.language_id": languageID}).
		Where("p.deleted_at IS NULL").
		Where(squirrel.Expr(
			"p.id IN (SELECT pw2.phrase_id FROM phrase_words pw2 JOIN words w2 ON w2.id = pw2.word_id WHERE pw2.language_id = ? AND pw2.deleted_at IS NULL AND w2.verse_id = ?)",
			languageID, verseID,
		)).
		GroupBy("g.phrase_id").
		OrderBy("min(w.position)", "p.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build phrases by verse query: %w", err)
	}

	var rows []phraseGlossRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get phrases for verse %s: %w", verseID, err)
	}

	phrases := make([]domain.Phrase, len(rows))
	for i, row := range rows {
		phrases[i] = row.toDomain()
	}
	return phrases, nil
}

// GetActive returns an active phrase of the language.
// Missing, soft-deleted and foreign phrases all yield domain.ErrNotFound.
func (r *Repo) GetActive(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error) {
	return r.getOne(ctx, languageID, id, true)
}

// Get returns a phrase of the language regardless of its soft-delete state.
func (r *Repo) Get(ctx context.Context, languageID uuid.UUID, id int64) (*domain.Phrase, error) {
	return r.getOne(ctx, languageID, id, false)
}

// CountActive returns how many of ids are active phrases of the language.
// Duplicate ids are counted once.
func (r *Repo) CountActive(ctx context.Context, languageID uuid.UUID, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var n int
	err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx,
		`SELECT count(*) FROM phrases WHERE language_id = $1 AND id = ANY($2) AND deleted_at IS NULL`,
		languageID, ids,
	).Scan(&n)
	if err != nil {
		return 0, postgres.MapError(err, "phrases", ids)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts an active phrase with exactly wordIDs. A word already
// covered by an active phrase of the language fails with
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (*domain.Phrase, error) {
	p := domain.Phrase{
		LanguageID: languageID,
		WordIDs:    slices.Clone(wordIDs),
		CreatedBy:  createdBy,
	}

	err := postgres.QuerierFromCtx(ctx, r.db).
		QueryRow(ctx, createSQL, languageID, createdBy, wordIDs).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "phrase words", wordIDs)
	}

	return &p, nil
}

// CreateSingletons inserts one active single-word phrase per word id in a
// single batch round-trip. Returns the number of phrases created.
func (r *Repo) CreateSingletons(ctx context.Context, languageID uuid.UUID, wordIDs []string, createdBy *uuid.UUID) (int, error) {
	if len(wordIDs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, wid := range wordIDs {
		batch.Queue(createSQL, languageID, createdBy, []string{wid})
	}

	br := postgres.QuerierFromCtx(ctx, r.db).SendBatch(ctx, batch)
	defer br.Close()

	for i := range wordIDs {
		var (
			id        int64
			createdAt time.Time
		)
		if err := br.QueryRow().Scan(&id, &createdAt); err != nil {
			return i, postgres.MapError(err, "phrase word", wordIDs[i])
		}
	}

	return len(wordIDs), nil
}

// SoftDelete marks the active phrases among ids that belong to the language
// as deleted by deletedBy, together with their word memberships. Ids that are
// missing, foreign or already deleted are skipped. Returns the number of
// phrases deleted.
func (r *Repo) SoftDelete(ctx context.Context, languageID uuid.UUID, ids []int64, deletedBy uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var n int
	err := postgres.QuerierFromCtx(ctx, r.db).
		QueryRow(ctx, softDeleteSQL, languageID, ids, deletedBy).
		Scan(&n)
	if err != nil {
		return 0, postgres.MapError(err, "phrases", ids)
	}
	return n, nil
}

// LockWords takes transaction-scoped advisory locks on every
// (language, word) pair, in sorted word order so that concurrent callers
// cannot deadlock on each other. Must be called inside a transaction.
func (r *Repo) LockWords(ctx context.Context, languageID uuid.UUID, wordIDs []string) error {
	if len(wordIDs) == 0 {
		return nil
	}

	keys := make([]string, len(wordIDs))
	for i, wid := range wordIDs {
		keys[i] = languageID.String() + ":" + wid
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	batch := &pgx.Batch{}
	for _, key := range keys {
		batch.Queue(lockWordSQL, key)
	}

	br := postgres.QuerierFromCtx(ctx, r.db).SendBatch(ctx, batch)
	defer br.Close()

	for _, key := range keys {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "word lock", key)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) getOne(ctx context.Context, languageID uuid.UUID, id int64, activeOnly bool) (*domain.Phrase, error) {
	qb := selectPhrases().
		Where(squirrel.Eq{"p.id": id, "p.language_id": languageID})
	if activeOnly {
		qb = qb.Where("p.deleted_at IS NULL")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build phrase query: %w", err)
	}

	var row phraseRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("phrase %d: %w", id, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "phrase", id)
	}

	p := row.toDomain()
	return &p, nil
}

func (r *Repo) selectMany(ctx context.Context, query string, args []any) ([]domain.Phrase, error) {
	var rows []phraseRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select phrases: %w", err)
	}

	phrases := make([]domain.Phrase, len(rows))
	for i, row := range rows {
		phrases[i] = row.toDomain()
	}
	return phrases, nil
}
