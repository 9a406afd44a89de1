// Package txretry retries transactional closures that fail with transient
// serialization errors. All read-then-write operations run under serializable
// isolation; the database aborts one of two conflicting siblings and the
// aborted one is replayed here.
package txretry

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/danekja/ymanager/internal"
)

const (
	maxAttempts = 3
	// txTimeout bounds a single transaction attempt. An attempt that blows
	// the budget is rolled back and surfaces as TIMEOUT.
	txTimeout = 5 * time.Second
)

// Do runs fn, retrying up to three times with jittered exponential backoff
// when isRetryable reports a transient failure. Each attempt gets its own
// deadline; exhausted retries surface as CONCURRENT_MODIFICATION.
func Do(ctx context.Context, isRetryable func(error) bool, fn func(ctx context.Context) error) error {
	backoff := retry.NewExponential(50 * time.Millisecond)
	backoff = retry.WithJitter(25*time.Millisecond, backoff)
	backoff = retry.WithMaxRetries(maxAttempts, backoff)

	var lastTransient bool
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		txCtx, cancel := context.WithTimeout(ctx, txTimeout)
		defer cancel()

		err := fn(txCtx)
		if err != nil && isRetryable(err) {
			lastTransient = true
			return retry.RetryableError(err)
		}
		lastTransient = false
		if errors.Is(err, context.DeadlineExceeded) {
			return internal.NewTimeoutError("transaction deadline exceeded")
		}
		return err
	})
	if err != nil && lastTransient {
		return internal.ErrConcurrentModification.WithCause(err)
	}
	return err
}
