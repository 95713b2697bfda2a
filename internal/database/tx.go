package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultMaxTxRetries is used when no explicit retry budget is configured
const DefaultMaxTxRetries = 3

const retryBackoff = 20 * time.Millisecond

// TxRunner executes closures in a transaction and re-runs them when the
// database reports a serialization failure or deadlock, so the loser of a
// race is replayed against the winner's committed state.
type TxRunner struct {
	db         *gorm.DB
	maxRetries int
}

// NewTxRunner creates a runner. maxRetries <= 0 falls back to DefaultMaxTxRetries.
func NewTxRunner(db *gorm.DB, maxRetries int) *TxRunner {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxTxRetries
	}
	return &TxRunner{db: db, maxRetries: maxRetries}
}

// DB returns the underlying connection for non-transactional reads
func (r *TxRunner) DB() *gorm.DB {
	return r.db
}

// Run executes fn inside a transaction. Retryable failures are attempted
// again up to the configured budget; any other error is returned as is.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrTxConflict, r.maxRetries, err)
}
