// Package log provides the context-first leveled logging used
// throughout the sindy engine, in the spirit of CockroachDB's
// util/log package: callers always pass a context.Context first, even
// though this default implementation does not thread anything through
// it yet, so a future tracing-aware logger can be swapped in without
// touching call sites.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Verbosity gates the VEventf hot-path tracer. 0 disables it entirely.
var verbosity int32

// SetVerbosity sets the process-wide verbosity level used by VEventf.
func SetVerbosity(v int) {
	atomic.StoreInt32(&verbosity, int32(v))
}

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects where log lines are written. Tests use this to
// capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func emit(level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s: %s\n", level, fmt.Sprintf(format, args...))
}

// Infof logs an informational message.
func Infof(_ context.Context, format string, args ...interface{}) {
	emit("I", format, args...)
}

// Warningf logs a warning.
func Warningf(_ context.Context, format string, args ...interface{}) {
	emit("W", format, args...)
}

// Errorf logs an error.
func Errorf(_ context.Context, format string, args ...interface{}) {
	emit("E", format, args...)
}

// VEventf logs only when the process-wide verbosity is >= level. No
// package in this module calls it.
func VEventf(ctx context.Context, level int, format string, args ...interface{}) {
	if atomic.LoadInt32(&verbosity) < int32(level) {
		return
	}
	emit("V", format, args...)
}
