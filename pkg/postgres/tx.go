package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
)

// PostgreSQL error codes this store cares about.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// InTx runs fn against a transaction-scoped store and commits iff fn returns
// nil. When the receiver is already transaction-scoped, fn joins the open
// transaction instead of starting a nested one.
func (d *DB) InTx(ctx context.Context, fn func(db.Store) error) error {
	if _, ok := d.q.(pgx.Tx); ok {
		return fn(d)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&DB{pool: d.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxFailure(err) {
			return fmt.Errorf("transaction lost a concurrency race: %w", db.ErrConflict)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-index violation, matched
// against one constraint name (empty matches any).
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isRetryableTxFailure reports whether err is a serialization failure or
// deadlock, the two shapes a lost row-lock race takes.
func isRetryableTxFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}
