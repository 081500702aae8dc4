// Package language resolves language codes to ids.
package language

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/interlinear-backend/internal/adapter/postgres"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// Repo provides language lookups backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new language repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type languageRow struct {
	ID   uuid.UUID `db:"id"`
	Code string    `db:"code"`
	Name string    `db:"name"`
}

// GetByCode returns the language with the given code.
func (r *Repo) GetByCode(ctx context.Context, code string) (*domain.Language, error) {
	return r.getOne(ctx, "code", code)
}

// GetByID returns the language with the given id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Language, error) {
	return r.getOne(ctx, "id", id)
}

// Exists reports whether a language with the given id exists.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := postgres.QuerierFromCtx(ctx, r.db).
		QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM languages WHERE id = $1)`, id).
		Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "language", id)
	}
	return exists, nil
}

func (r *Repo) getOne(ctx context.Context, column string, value any) (*domain.Language, error) {
	query, args, err := postgres.Builder().
		Select("id", "code", "name").
		From("languages").
		Where(squirrel.Eq{column: value}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build language query: %w", err)
	}

	var row languageRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("language %v: %w", value, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "language", value)
	}

	lang := domain.Language(row)
	return &lang, nil
}
