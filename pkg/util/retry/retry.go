// Copyright (C) 2017 ScyllaDB

package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
)

// Backoff specifies a policy for how long to wait between retries.
// It's called after an operation has failed to decide how much to wait before
// retrying.
type Backoff = backoff.BackOff

// An Operation is executing by WithNotify().
// The operation will be retried using a backoff policy if it returns an error.
type Operation = backoff.Operation

// Notify is a notify-on-error function. It receives an operation error and
// backoff delay if the operation failed (with an error).
type Notify = backoff.Notify

// Stop indicates that no more retries should be made.
const Stop = backoff.Stop

// WithNotify calls notify function with the error and wait duration
// for each failed attempt before sleep.
func WithNotify(ctx context.Context, op Operation, b Backoff, n Notify) error {
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), n)
}

// Permanent wraps the given err in a *backoff.PermanentError.
// This error interrupts further retries and causes retrying mechanism.
func Permanent(err error) *backoff.PermanentError {
	return backoff.Permanent(err)
}

// NewExponentialBackoff returns Backoff that increases the wait time
// exponentially up to maxWait. maxElapsedTime of 0 means there is no time
// limit and the number of retries is bounded only by the wrapping policy.
func NewExponentialBackoff(initialInterval, maxElapsedTime, maxInterval time.Duration, multiplier, randomFactor float64) Backoff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxElapsedTime = maxElapsedTime
	b.MaxInterval = maxInterval
	b.Multiplier = multiplier
	b.RandomizationFactor = randomFactor
	b.Reset()
	return b
}

// WithMaxRetries stops retrying after maxRetries attempts.
func WithMaxRetries(b Backoff, maxRetries uint64) Backoff {
	return backoff.WithMaxRetries(b, maxRetries)
}

// BackoffFunc turns a function into a Backoff.
type BackoffFunc func() time.Duration

var _ Backoff = BackoffFunc(nil)

// NextBackOff calls f.
func (f BackoffFunc) NextBackOff() time.Duration {
	return f()
}

// Reset does nothing.
func (f BackoffFunc) Reset() {}
