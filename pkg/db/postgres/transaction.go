package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SQLStateExclusionViolation   = "23P01"
	SQLStateUniqueViolation      = "23505"
	SQLStateSerializationFailure = "40001"
	SQLStateDeadlockDetected     = "40P01"
)

type TransactionFunc func(ctx context.Context, tx pgx.Tx) error

type TransactionManager struct {
	pool        *pgxpool.Pool
	maxAttempts int
	baseBackoff time.Duration
}

func NewTransactionManager(pool *pgxpool.Pool) *TransactionManager {
	return &TransactionManager{
		pool:        pool,
		maxAttempts: 3,
		baseBackoff: 20 * time.Millisecond,
	}
}

// ExecuteTransaction commits fn or rolls it back. Serialization failures and
// deadlocks are retried with exponential backoff; any other error is returned
// as is so callers can inspect constraint violations.
func (m *TransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || !IsRetryable(err) || attempt == m.maxAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.baseBackoff << (attempt - 1)):
		}
	}
	return err
}

func (m *TransactionManager) runOnce(ctx context.Context, fn TransactionFunc) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsRetryable(err error) bool {
	switch SQLState(err) {
	case SQLStateSerializationFailure, SQLStateDeadlockDetected:
		return true
	}
	return false
}
