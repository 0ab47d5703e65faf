package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// defaultRetryMaxElapsed bounds the total time spent re-running a conflicting transaction
const defaultRetryMaxElapsed = 2 * time.Second

// newTxBackoff returns a fresh policy; BackOff implementations are stateful.
func newTxBackoff(maxElapsed time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed
	return bo
}

// withTx executes fn within a database transaction.
// It handles begin, rollback on error and commit on success. When the database
// reports a serialization failure the whole body runs again from scratch, so fn
// must not keep state across attempts.
func withTx(ctx context.Context, db *sql.DB, d *dialect, maxElapsed time.Duration, fn func(*sql.Tx) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := runTx(ctx, db, d.txOptions, fn)
		if err == nil {
			return nil
		}
		if d.isRetryable(err) {
			slog.Debug("transaction conflict, retrying", "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(op, backoff.WithContext(newTxBackoff(maxElapsed), ctx))
	if err != nil && d.isRetryable(err) {
		return fmt.Errorf("%w after %d attempts: %v", ErrTxConflict, attempt, err)
	}
	return err
}

func runTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// toUnixNano stores timestamps as integers so both dialects keep full precision
func toUnixNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
