package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/interlinear-backend/internal/config"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// SQLSTATE codes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// TxOptions tunes a single RunInTxWith call.
type TxOptions struct {
	// IsoLevel defaults to Read Committed (PostgreSQL default).
	IsoLevel pgx.TxIsoLevel
	// MaxAttempts overrides the manager default when > 0.
	MaxAttempts int
	// RetryOn marks additional errors as retryable for this call.
	RetryOn func(err error) bool
}

// TxManager manages database transactions using the context pattern.
// A RunInTx call inside another RunInTx callback joins the outer
// transaction instead of opening a second one; options of the inner call
// are ignored in that case.
type TxManager struct {
	db          DB
	log         *slog.Logger
	maxAttempts int
	backoff     time.Duration
}

// NewTxManager creates a new TxManager.
func NewTxManager(db DB, logger *slog.Logger, cfg config.TxConfig) *TxManager {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &TxManager{
		db:          db,
		log:         logger.With("component", "txmanager"),
		maxAttempts: attempts,
		backoff:     cfg.RetryBackoff,
	}
}

// RunInTx executes fn within a Read Committed transaction.
// See RunInTxWith.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTxWith(ctx, TxOptions{}, fn)
}

// RunInTxWith executes fn within a database transaction.
// On success: commits.
// On error from fn: rolls back; serialization failures, deadlocks and errors
// accepted by opts.RetryOn are retried with a linear backoff up to the
// attempt limit, everything else is returned as is.
// On panic from fn: rolls back and re-panics.
func (m *TxManager) RunInTxWith(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	attempts := m.maxAttempts
	if opts.MaxAttempts > 0 {
		attempts = opts.MaxAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = m.runOnce(ctx, opts.IsoLevel, fn)
		if err == nil {
			return nil
		}
		if attempt == attempts || !(IsRetryable(err) || (opts.RetryOn != nil && opts.RetryOn(err))) {
			return err
		}

		m.log.DebugContext(ctx, "retrying transaction",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		if waitErr := sleepCtx(ctx, m.backoff*time.Duration(attempt)); waitErr != nil {
			return errors.Join(err, waitErr)
		}
	}
	return err
}

func (m *TxManager) runOnce(ctx context.Context, iso pgx.TxIsoLevel, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	txCtx := withTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// IsRetryable reports whether err is a transient concurrency failure:
// a serialization failure, a deadlock, or an error tagged with
// domain.ErrRetryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRetryable) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunSerializable executes fn within a SERIALIZABLE transaction, retrying
// serialization failures and deadlocks like RunInTx.
func (m *TxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTxWith(ctx, TxOptions{IsoLevel: pgx.Serializable}, fn)
}
