package stealpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool is a fixed-size work-stealing task-execution engine: a set of
// worker goroutines, each pinned to its own OS thread for its lifetime,
// each owning a bounded local ring, draining it, then falling back to a
// shared overflow list, then to stealing from peers, before backing off.
//
// A zero Pool is not usable; construct one with [New].
type Pool struct {
	workers  []*worker
	overflow overflowList

	active      atomic.Int64 // tasks currently executing (popped, not yet settled)
	outstanding atomic.Int64 // tasks submitted but not yet settled, from enqueue through completion
	closed      atomic.Bool

	wg      sync.WaitGroup
	closeMu sync.Mutex

	ids sync.Map // goroutine id (uint64) -> *worker, for the owning worker

	logger        diagLogger
	metrics       *metricsRecorder
	limiter       rateLimiter
	limiterKeyFn  func() any
	backoffLadder backoffLadder
}

// New constructs and starts a Pool of worker goroutines. The worker
// count is n if n is non-zero; otherwise it falls back to whatever
// [WithWorkers] supplied, and if that's also unset (or zero),
// runtime.GOMAXPROCS(0). Each worker goroutine is pinned to its own OS
// thread for the pool's lifetime via runtime.LockOSThread, so
// ThreadCount() workers means exactly that many OS threads dedicated to
// the pool, independent of Go's usual M:N goroutine scheduling.
func New(n int, opts ...Option) (*Pool, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrInvalidWorkerCount
	}
	if n == 0 {
		n = o.workers
	}
	if n == 0 {
		n = runtime.GOMAXPROCS(0)
		if n < 1 {
			n = 1
		}
	}

	p := &Pool{
		logger:        newDiagLogger(o.logger),
		limiter:       wrapLimiter(o.limiter),
		limiterKeyFn:  o.limiterKeyFn,
		backoffLadder: o.backoffLadder,
	}
	if o.metrics {
		p.metrics = newMetricsRecorder()
	}

	p.workers = make([]*worker, n)
	for i := range p.workers {
		ring, err := newLocalRing(o.ringCapacity)
		if err != nil {
			return nil, err
		}
		p.workers[i] = &worker{
			pool:  p,
			index: i,
			ring:  ring,
			wakeCh: make(chan struct{}, 1),
		}
	}

	p.wg.Add(n)
	for _, w := range p.workers {
		go w.loop()
	}

	return p, nil
}

// ThreadCount returns the number of worker goroutines (and, per New's
// pinning guarantee, OS threads) owned by the pool.
func (p *Pool) ThreadCount() int {
	return len(p.workers)
}

// PendingTasks returns a racy, best-effort count of tasks that have been
// submitted but not yet settled: tasks resident in the overflow list plus
// tasks currently executing. It deliberately excludes tasks resident in
// workers' local rings (see spec.md's own caveat on this quantity) — it
// is a load indicator, not a quiescence oracle. Use Wait to actually
// block for drain.
func (p *Pool) PendingTasks() int64 {
	return p.overflow.length() + p.active.Load()
}

// Submit enqueues a task that returns only an error, and returns a
// Future[struct{}] for it. Equivalent to SubmitValue with a function that
// returns (struct{}{}, err).
func Submit(p *Pool, fn func() error) (*Future[struct{}], error) {
	return SubmitValue(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// SubmitValue enqueues a task that produces a value of type T, returning
// a Future that will hold its result once the task completes. Submission
// itself never blocks: if the calling goroutine is a pool worker and its
// own ring has room, the task is pushed there; otherwise it goes on the
// shared overflow list.
//
// SubmitValue returns ErrPoolClosed if the pool has begun shutting down,
// or a *RateLimitedError if a configured [WithRateLimiter] rejects this
// submission's category.
func SubmitValue[T any](p *Pool, fn func() (T, error)) (*Future[T], error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if p.limiter != nil {
		category := p.limiterKeyFn()
		if retryAt, ok := p.limiter.Allow(category); !ok {
			return nil, &RateLimitedError{Category: category, RetryAt: retryAt}
		}
	}

	future := newFuture[T]()
	e := newEnvelope(fn, future, p.logger.taskPanic)
	p.enqueue(e)
	return future, nil
}

// Go enqueues a task with no result beyond completion/error, discarding
// its Future. It's a convenience wrapper for fire-and-forget submission;
// any panic is still recovered and logged, never propagated to the
// caller of Go.
func (p *Pool) Go(fn func() error) error {
	_, err := Submit(p, fn)
	return err
}

// enqueue places e on the calling worker's own ring if the caller is a
// pool worker and the ring has room, otherwise on the shared overflow
// list. It then nudges a sleeping worker so the new task isn't stuck
// behind a full back-off interval.
//
// outstanding is incremented here, before e is reachable by any worker,
// and decremented only once e has finished executing (see worker.execute)
// — so it accounts for a task across its entire submit-to-completion
// lifetime, with no gap between a worker dequeuing e and that worker
// recording it as active.
func (p *Pool) enqueue(e *envelope) {
	p.outstanding.Add(1)
	if w, ok := p.currentWorker(); ok {
		if w.ring.push(e) {
			p.wakeHint()
			return
		}
	}
	p.overflow.push(e)
	p.wakeHint()
}

// currentWorker returns the *worker owning the calling goroutine, if the
// calling goroutine is itself a pool worker's main-loop goroutine.
func (p *Pool) currentWorker() (*worker, bool) {
	id := goroutineID()
	v, ok := p.ids.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*worker), true
}

// wakeHint nudges one sleeping worker, if any, to re-check for work
// rather than wait out its remaining back-off interval. It's a hint, not
// a guarantee: if every worker happens to be awake and busy, the send is
// simply skipped (channels are non-blocking, size-1).
func (p *Pool) wakeHint() {
	for _, w := range p.workers {
		if w.sleeping.Load() {
			select {
			case w.wakeCh <- struct{}{}:
				return
			default:
			}
		}
	}
}

// Wait blocks until every submitted task has settled (executed, or been
// recovered from a panic — either way, its Future is resolved), or until
// ctx is done. It polls outstanding, a counter spanning a task's entire
// submit-to-completion lifetime (see enqueue), rather than PendingTasks,
// which deliberately excludes ring-resident tasks and would let Wait
// return early while a task still sat in a ring, unexecuted.
//
// Wait does not prevent new tasks from being submitted concurrently by
// other goroutines; if that happens, Wait may return successfully despite
// a task having beeen submitted after the check, or it may keep blocking
// until ctx expires. Callers needing a hard barrier should stop
// submitting before calling Wait.
func (p *Pool) Wait(ctx context.Context) error {
	const pollInterval = 200 * time.Microsecond
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		if p.quiescent() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// quiescent reports whether every submitted task has settled.
func (p *Pool) quiescent() bool {
	return p.outstanding.Load() == 0
}

// Close stops accepting new submissions, waits for all in-flight and
// queued tasks (including anything still sitting in the overflow list or
// a worker's local ring) to finish, then joins every worker goroutine.
// After Close returns, ThreadCount OS threads have been released.
//
// Close is idempotent: calling it more than once returns nil on every
// call after the first actually performs the shutdown.
func (p *Pool) Close() error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed.Swap(true) {
		return nil
	}

	// Give every worker a chance to drain naturally; a worker only exits
	// its loop once it observes closed==true AND finds no work while no
	// submitted task is left unsettled (outstanding == 0). Each worker
	// gets one wake hint here; a worker that still sees outstanding tasks
	// after that re-checks at least once per long back-off interval.
	for _, w := range p.workers {
		select {
		case w.wakeCh <- struct{}{}:
		default:
		}
	}

	p.wg.Wait()
	p.logger.info("pool closed", "workers", len(p.workers))
	return nil
}

// Metrics returns a snapshot of per-task latency percentiles, or false if
// the pool wasn't constructed with WithMetrics(true).
func (p *Pool) Metrics() (PoolMetrics, bool) {
	if p.metrics == nil {
		return PoolMetrics{}, false
	}
	return p.metrics.snapshot(), true
}
