// Package stealpool implements an in-process work-stealing task-execution
// engine: a fixed-size set of worker goroutines, each owning a bounded
// local ring, that dispatch submitted work through local dequeue,
// cross-worker stealing, and a shared overflow path.
//
// # Architecture
//
// Submitted tasks are wrapped in a heap-allocated envelope and routed to
// one of two places: the current goroutine's own [localRing], if it
// happens to be a pool worker (giving recursively-spawned tasks data
// locality), or the shared [overflowList] otherwise. Workers drain their
// own ring first, then the overflow list, then attempt to steal from a
// random peer; if all three miss, they back off through a staged ladder
// (yield, then short sleeps, then a longer sleep with a wake channel).
//
// # Thread Model
//
// Each worker is pinned to its own OS thread for its lifetime via
// runtime.LockOSThread, so "N workers" means N OS threads exist between
// [New] returning and [Pool.Close] being called, matching the pool's
// documented thread-count guarantee even though Go's scheduler is
// normally M:N.
//
// # Completion Handles
//
// [Submit] and [SubmitValue] return a [*Future], a one-shot handle the
// submitter blocks on via [Future.Get] to observe the task's return value
// or its propagated error (including recovered panics, wrapped in
// [*PanicError]). [Pool.Go] submits the same way but discards the handle,
// returning only a submission error.
//
// # Usage
//
//	pool, err := stealpool.New(4)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	f, _ := stealpool.SubmitValue(pool, func() (int, error) {
//		return 42, nil
//	})
//	v, err := f.Get(context.Background())
//
// # Non-goals
//
// Dynamic resizing of the worker set, task priorities/deadlines,
// cancellation of already-submitted tasks, and cross-process
// distribution are explicitly out of scope — see the package-level
// design document for the full rationale.
package stealpool
