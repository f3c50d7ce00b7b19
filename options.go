package stealpool

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// DefaultRingCapacity is the local-ring capacity used when
// WithRingCapacity isn't supplied. Matches spec.md's suggested C=4096.
const DefaultRingCapacity = 4096

// options holds resolved pool configuration, built by resolveOptions from
// a slice of Option values.
type options struct {
	workers       int
	ringCapacity  int
	logger        *logiface.Logger[logiface.Event]
	metrics       bool
	limiter       *catrate.Limiter
	limiterKeyFn  func() any
	backoffLadder backoffLadder
}

// Option configures a Pool at construction time via [New].
type Option interface {
	apply(*options) error
}

type optionFunc func(*options) error

func (f optionFunc) apply(o *options) error { return f(o) }

// WithWorkers sets the number of worker goroutines, for callers who'd
// rather configure it via options than via New's positional n. It only
// takes effect when New is called with n == 0; a non-zero positional n
// always wins. If neither is set (both zero), New defaults to
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) error {
		if n < 0 {
			return ErrInvalidWorkerCount
		}
		o.workers = n
		return nil
	})
}

// WithRingCapacity sets the per-worker local-ring capacity, which must be
// a positive power of two. Defaults to [DefaultRingCapacity].
func WithRingCapacity(capacity int) Option {
	return optionFunc(func(o *options) error {
		if capacity <= 0 || capacity&(capacity-1) != 0 {
			return ErrInvalidRingCapacity
		}
		o.ringCapacity = capacity
		return nil
	})
}

// WithLogger attaches a structured logger for diagnostic events (worker
// start/stop, task panics, shutdown). It is never used to swallow a
// task's own error — that always still flows to the task's Future. A nil
// logger (the default) disables logging entirely; logiface.Logger is
// nil-safe, so passing nil explicitly is also fine.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return optionFunc(func(o *options) error {
		o.logger = logger
		return nil
	})
}

// WithMetrics enables per-task latency percentile tracking, retrievable
// via Pool.Metrics. Disabled by default.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(o *options) error {
		o.metrics = enabled
		return nil
	})
}

// WithRateLimiter attaches an admission-control rate limiter: before
// enqueueing, Submit/SubmitValue/Go call keyFn() to obtain a category,
// then limiter.Allow(category). If the category has no budget left, the
// submission fails immediately with a *RateLimitedError instead of being
// enqueued. This is independent of, and in addition to, the ring/overflow
// backpressure path, which always accepts.
//
// If keyFn is nil, a single shared category (the empty string) is used
// for every submission.
func WithRateLimiter(limiter *catrate.Limiter, keyFn func() any) Option {
	return optionFunc(func(o *options) error {
		o.limiter = limiter
		if keyFn == nil {
			keyFn = func() any { return "" }
		}
		o.limiterKeyFn = keyFn
		return nil
	})
}

// backoffLadder configures the worker back-off staging durations. It's
// unexported — the shape of the ladder is part of spec.md §4.4's
// contract (monotonic escalation), but the exact durations are tuning
// knobs exposed only via WithBackoffLadder for tests.
type backoffLadder struct {
	yieldUntil       int
	shortSleepUntil  int
	shortSleep       time.Duration
	mediumSleepUntil int
	mediumSleep      time.Duration
	longSleep        time.Duration
}

var defaultBackoffLadder = backoffLadder{
	yieldUntil:       10,
	shortSleepUntil:  20,
	shortSleep:       10 * time.Microsecond,
	mediumSleepUntil: 100,
	mediumSleep:      100 * time.Microsecond,
	longSleep:        time.Millisecond,
}

// WithBackoffLadder overrides the default back-off ladder durations. Used
// by tests to make back-off deterministic and fast; production callers
// shouldn't normally need this.
func WithBackoffLadder(shortSleep, mediumSleep, longSleep time.Duration) Option {
	return optionFunc(func(o *options) error {
		o.backoffLadder = backoffLadder{
			yieldUntil:       10,
			shortSleepUntil:  20,
			shortSleep:       shortSleep,
			mediumSleepUntil: 100,
			mediumSleep:      mediumSleep,
			longSleep:        longSleep,
		}
		return nil
	})
}

// resolveOptions applies opts over the documented defaults.
func resolveOptions(opts []Option) (*options, error) {
	o := &options{
		ringCapacity:  DefaultRingCapacity,
		backoffLadder: defaultBackoffLadder,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
