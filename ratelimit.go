package stealpool

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// rateLimiter is the admission-control seam Submit/SubmitValue/Go check
// before enqueueing. It's a thin indirection over *catrate.Limiter so
// that a nil limiter (the common case) costs a single nil check rather
// than a type assertion on every submission.
type rateLimiter interface {
	Allow(category any) (time.Time, bool)
}

// wrapLimiter returns nil if limiter is nil, so Pool.limiter can be
// compared against nil directly on the submission hot path.
func wrapLimiter(limiter *catrate.Limiter) rateLimiter {
	if limiter == nil {
		return nil
	}
	return limiter
}
