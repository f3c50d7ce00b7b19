package stealpool

import (
	"errors"
	"fmt"
	"time"
)

// Standard errors returned by pool operations.
var (
	// ErrPoolClosed is returned by Submit, SubmitValue, and Go once Close
	// has begun shutting the pool down.
	ErrPoolClosed = errors.New("stealpool: pool is closed")

	// ErrInvalidRingCapacity is returned by New/WithRingCapacity when the
	// requested local-ring capacity isn't a power of two, or isn't positive.
	ErrInvalidRingCapacity = errors.New("stealpool: ring capacity must be a positive power of two")

	// ErrInvalidWorkerCount is returned by New when a negative worker count
	// is requested explicitly (zero is allowed, and means "use the
	// platform default").
	ErrInvalidWorkerCount = errors.New("stealpool: worker count must not be negative")
)

// PanicError wraps a value recovered from a panicking task, so that the
// original cause remains reachable via [errors.As]/[errors.Is] through
// Unwrap, matching how the task's own error (if it didn't panic) would be
// reachable directly.
type PanicError struct {
	// Value is the value passed to panic() by the task.
	Value any
	// Stack is the stack trace captured at the point of recovery, for
	// diagnostic logging; it is not part of the error's identity.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stealpool: task panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is itself an
// error, enabling errors.Is/errors.As to see through to the original
// cause. Returns nil if the panic value isn't an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RateLimitedError is returned by Submit/SubmitValue/Go when a
// [WithRateLimiter] admission-control check rejects the submission.
type RateLimitedError struct {
	// Category is the rate-limiting category that rejected the submission.
	Category any
	// RetryAt is the earliest time at which the category is expected to
	// have budget again, per the underlying limiter.
	RetryAt time.Time
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("stealpool: submission rejected by rate limiter for category %v (retry at %v)", e.Category, e.RetryAt)
}
