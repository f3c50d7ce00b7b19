package stealpool

import "runtime"

// envelope is the heap-allocated unit of work that flows through the
// local rings and the overflow list. It owns a type-erased, zero-argument
// callable (run) built at submission time, and a non-owning forward link
// (next) used only while the envelope is resident on the overflow list.
//
// An envelope is allocated by Submit/SubmitValue/Go and deallocated (by
// becoming unreachable) by the worker that executes it, immediately after
// run returns — whether the task succeeded, failed, or panicked. It is
// never recycled back onto a queue (see overflow.go's doc comment for why
// that matters).
type envelope struct {
	run  func()
	next *envelope
}

// newEnvelope builds an envelope that invokes fn under panic recovery and
// resolves future with fn's result, or the captured error/panic. onPanic,
// if non-nil, is called with the recovered value and captured stack
// before the future is settled, so callers can log a panic that would
// otherwise only be visible to whoever reads the task's error.
func newEnvelope[T any](fn func() (T, error), future *Future[T], onPanic func(value any, stack []byte)) *envelope {
	return &envelope{
		run: func() {
			var (
				val T
				err error
			)
			func() {
				defer func() {
					if r := recover(); r != nil {
						stack := make([]byte, 4096)
						n := runtime.Stack(stack, false)
						stack = stack[:n]
						if onPanic != nil {
							onPanic(r, stack)
						}
						err = &PanicError{Value: r, Stack: stack}
					}
				}()
				val, err = fn()
			}()
			future.settle(val, err)
		},
	}
}
