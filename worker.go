package stealpool

import (
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"
)

// worker is one goroutine of the pool, pinned to its own OS thread for
// its entire lifetime. It owns exactly one localRing, and otherwise only
// touches shared state (the overflow list, peer rings, the pool's atomic
// counters) through the lock-free primitives they themselves expose.
type worker struct {
	pool  *Pool
	index int
	ring  *localRing

	sleeping atomic.Bool
	wakeCh   chan struct{}

	misses int
	rng    *rand.Rand
}

// loop is the worker's main loop: local ring, then overflow, then
// stealing from peers, then back off. It runs for the pool's entire
// lifetime, exiting only once the pool is closed and no work remains
// anywhere (own ring, overflow, every peer's ring).
func (w *worker) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer w.pool.wg.Done()

	id := goroutineID()
	w.pool.ids.Store(id, w)
	defer w.pool.ids.Delete(id)

	w.rng = rand.New(rand.NewSource(int64(id) ^ int64(w.index)<<32 ^ time.Now().UnixNano()))

	w.pool.logger.debug("worker started", "index", w.index)
	defer w.pool.logger.debug("worker stopped", "index", w.index)

	for {
		e := w.findWork()
		if e != nil {
			w.misses = 0
			w.execute(e)
			continue
		}

		if w.pool.closed.Load() && w.pool.quiescent() {
			return
		}

		w.backoff()
	}
}

// findWork tries, in order: the worker's own ring, the shared overflow
// list, then stealing from a randomly chosen peer (up to 2*N attempts,
// skipping itself), matching spec.md §4.4's victim-selection strategy.
func (w *worker) findWork() *envelope {
	if e := w.ring.pop(); e != nil {
		return e
	}
	if e := w.pool.overflow.pop(); e != nil {
		return e
	}
	return w.steal()
}

func (w *worker) steal() *envelope {
	n := len(w.pool.workers)
	if n < 2 {
		return nil
	}
	for attempt := 0; attempt < 2*n; attempt++ {
		victim := w.rng.Intn(n)
		if victim == w.index {
			continue
		}
		if e := w.pool.workers[victim].ring.steal(); e != nil {
			return e
		}
	}
	return nil
}

// execute runs e.run (which itself recovers task panics and settles the
// task's Future), tracking the pool's active-task count and, if enabled,
// recording the task's latency. outstanding is decremented only once
// e.run has returned — meaning the task has fully settled — so a
// concurrent Wait can never observe quiescence while e is still running.
func (w *worker) execute(e *envelope) {
	w.pool.active.Add(1)
	defer w.pool.outstanding.Add(-1)
	defer w.pool.active.Add(-1)

	var start time.Time
	if w.pool.metrics != nil {
		start = time.Now()
	}

	e.run()

	if w.pool.metrics != nil {
		w.pool.metrics.record(time.Since(start))
	}
}

// backoff escalates through a staged ladder the longer the worker finds
// no work: cooperative yielding, then progressively longer sleeps,
// finally parking on wakeCh (woken early by any submission via
// Pool.wakeHint, or after a bounded timeout regardless, so a missed hint
// never means a permanently sleeping worker).
func (w *worker) backoff() {
	ladder := w.pool.backoffLadder
	w.misses++

	switch {
	case w.misses < ladder.yieldUntil:
		runtime.Gosched()

	case w.misses < ladder.shortSleepUntil:
		time.Sleep(ladder.shortSleep)

	case w.misses < ladder.mediumSleepUntil:
		time.Sleep(ladder.mediumSleep)

	default:
		w.sleeping.Store(true)
		select {
		case <-w.wakeCh:
		case <-time.After(ladder.longSleep):
		}
		w.sleeping.Store(false)
	}
}
