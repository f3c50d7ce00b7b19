package stealpool

import "runtime"

// goroutineID returns the current goroutine's runtime-assigned ID, by
// parsing the "goroutine NNN [...]" header runtime.Stack always writes
// first. This is the same trick used to detect reentrancy from a single
// fixed goroutine; here it's generalized to identify which (if any) of a
// whole pool of worker goroutines is the caller, via Pool.ids.
//
// There's no supported API for this, so it's deliberately kept tiny and
// isolated to one file: if a future Go version changes the stack header
// format, this is the only place that needs to change.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
