package postfx

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/postfx/gfx"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := gfx.NopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for postfx and all its sub-packages.
// By default, postfx produces no log output. Pass nil to disable logging
// (restore the default silent behavior).
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
//
// Log levels used by postfx:
//   - [slog.LevelDebug]: internal diagnostics (buffer swaps, shader rebuilds)
//   - [slog.LevelInfo]: important lifecycle events (backend selected)
//   - [slog.LevelWarn]: non-fatal issues (capability fallback, failed pass)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	postfx.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	postfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = gfx.NopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by postfx. Sub-packages
// (outline/, backend/) call this to share the same logger configuration
// without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// propagateLogger passes the logger to a context if it accepts one.
// Called when a Composer attaches to a context so the context shares
// the package logger configuration.
func propagateLogger(ctx gfx.Context, l *slog.Logger) {
	if ls, ok := ctx.(gfx.LoggerSetter); ok {
		ls.SetLogger(l)
	}
}
