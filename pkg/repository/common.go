package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
)

// lockMarkers are fragments of sqlite errors caused by a concurrent writer
var lockMarkers = []string{"SQLITE_BUSY", "database is locked", "database table is locked"}

// errCritical stops retries, every criticalError matches it
var errCritical = errors.New("critical database error")

// criticalError marks a failure that is not about locking
type criticalError struct {
	err error
}

func (e *criticalError) Error() string { return e.err.Error() }

func (e *criticalError) Unwrap() error { return e.err }

func (e *criticalError) Is(target error) bool { return target == errCritical }

// isLockError reports whether err came from a busy or locked database
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range lockMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// classify passes lock errors through as is and wraps the rest with the stage they failed at
func classify(op, stage string, err error) error {
	if isLockError(err) {
		return err
	}
	if stage != "" {
		op += ", " + stage
	}
	return &criticalError{err: fmt.Errorf("%s: %w", op, err)}
}

// inTx runs fn in a transaction with backoff on lock errors, other errors end it at once
func inTx(ctx context.Context, db *sqlx.DB, op string, fn func(tx *sqlx.Tx) error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return classify(op, "begin", err)
		}
		if err = fn(tx); err != nil {
			_ = tx.Rollback()
			return classify(op, "", err)
		}
		if err = tx.Commit(); err != nil {
			return classify(op, "commit", err)
		}
		return nil
	}, errCritical)
}
