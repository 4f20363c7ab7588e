package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// withTransaction executes a function within a transaction
func withTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// uniqueViolation extracts the constraint name when err is a Postgres
// unique-constraint violation (class 23505), so repositories can turn it
// into a typed domain error instead of leaking the driver error.
func uniqueViolation(err error) (string, bool) {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}
