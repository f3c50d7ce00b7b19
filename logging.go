package stealpool

import "github.com/joeycumines/logiface"

// diagLogger wraps an optional *logiface.Logger[logiface.Event] with a
// small key/value convenience surface, matching how sql/export wires
// logiface: store the logger as-is (it's nil-safe — Debug/Info/etc. on a
// nil *Logger return a no-op builder), and build structured fields
// inline at the call site instead of pre-formatting strings.
type diagLogger struct {
	logger *logiface.Logger[logiface.Event]
}

func newDiagLogger(logger *logiface.Logger[logiface.Event]) diagLogger {
	return diagLogger{logger: logger}
}

// debug logs msg at debug level with the given alternating key/value
// pairs. Values are attached via Interface, so callers aren't limited to
// a fixed set of field types.
func (d diagLogger) debug(msg string, kv ...any) {
	d.log(d.logger.Debug(), msg, kv)
}

func (d diagLogger) info(msg string, kv ...any) {
	d.log(d.logger.Info(), msg, kv)
}

func (d diagLogger) warn(msg string, kv ...any) {
	d.log(d.logger.Warning(), msg, kv)
}

func (d diagLogger) err(msg string, cause error, kv ...any) {
	b := d.logger.Err()
	if cause != nil {
		b = b.Err(cause)
	}
	d.log(b, msg, kv)
}

// taskPanic logs a recovered task panic at error level, carrying the
// panicking value and the captured stack trace. It's passed as the
// onPanic callback to newEnvelope, so a panic is always logged here
// regardless of whether anyone ever calls Get on the task's Future.
func (d diagLogger) taskPanic(value any, stack []byte) {
	d.err("task panicked", nil, "value", value, "stack", string(stack))
}

func (d diagLogger) log(b *logiface.Builder[logiface.Event], msg string, kv []any) {
	if !b.Enabled() {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		b = b.Interface(key, kv[i+1])
	}
	b.Log(msg)
}
