package stealpool

import "sync/atomic"

// overflowList is the unbounded multi-producer-multi-consumer overflow
// list (MPML): an intrusive LIFO stack of envelopes, used by external
// submitters (goroutines that aren't pool workers) and as the spill path
// when a worker's local ring is full.
//
// Producers push by CAS-swapping the head; any worker consumes by
// CAS-popping the head. An envelope is resident on at most one queue at a
// time, and — critically — is never pushed back onto a queue after being
// popped and executed (spec.md §4.2's no-recycling rule). That's what
// makes the plain CAS-based push/pop ABA-safe here: a node that's been
// popped is headed for execution and deallocation, never back onto this
// list, so there's no way for a stale head pointer to be reinstalled.
type overflowList struct {
	head atomic.Pointer[envelope]
	size atomic.Int64
}

// push installs e as the new head.
func (l *overflowList) push(e *envelope) {
	for {
		head := l.head.Load()
		e.next = head
		if l.head.CompareAndSwap(head, e) {
			l.size.Add(1)
			return
		}
	}
}

// pop removes and returns the current head, or nil if the list is empty.
func (l *overflowList) pop() *envelope {
	for {
		head := l.head.Load()
		if head == nil {
			return nil
		}
		if l.head.CompareAndSwap(head, head.next) {
			l.size.Add(-1)
			head.next = nil
			return head
		}
	}
}

// drain lifts the whole list off in one atomic swap and returns it as a slice,
// for use only at pool shutdown, after all workers have been joined (so
// there's no concurrent producer/consumer left to race with).
func (l *overflowList) drain() []*envelope {
	head := l.head.Swap(nil)
	var out []*envelope
	for head != nil {
		next := head.next
		head.next = nil
		out = append(out, head)
		head = next
	}
	l.size.Store(0)
	return out
}

// length returns the current best-effort size of the list.
func (l *overflowList) length() int64 {
	return l.size.Load()
}
