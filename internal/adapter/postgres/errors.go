package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// MapError wraps err with entity and id and translates pg failures into
// domain sentinels. Context errors pass through unmapped. Serialization
// failures and deadlocks keep the *pgconn.PgError next to domain.ErrRetryable
// so TxManager can retry them.
func MapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}

	wrap := func(target error) error { return fmt.Errorf("%s %v: %w", entity, id, target) }

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return wrap(err)
	case errors.Is(err, pgx.ErrNoRows):
		return wrap(domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return wrap(err)
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return wrap(domain.ErrAlreadyExists)
	case codeForeignKeyViolation:
		return wrap(domain.ErrNotFound)
	case codeCheckViolation:
		return wrap(domain.ErrValidation)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s %v: %w: %w", entity, id, domain.ErrRetryable, err)
	}
	return wrap(err)
}
