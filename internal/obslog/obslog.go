// Package obslog provides the diagnostic-only structured logger shared by
// poller, sidejob, and workerpool. It is wired to github.com/joeycumines/logiface,
// via the logiface-slog backend, writing to stderr at warning level.
//
// Nothing in this package is on a hot path, and nothing it logs is part of
// any public contract: it exists purely so invariant violations and dropped
// callback failures leave a trace.
package obslog

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

var (
	once   sync.Once
	logger *logiface.Logger[*islog.Event]
)

// Default returns the package-wide diagnostic logger, initializing it on
// first use.
func Default() *logiface.Logger[*islog.Event] {
	once.Do(func() {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
		logger = islog.L.New(islog.L.WithSlogHandler(handler))
	})
	return logger
}

// Warn emits a warning-level diagnostic with a component tag and a message.
func Warn(component, msg string) {
	Default().Warning().Str("component", component).Log(msg)
}

// WarnErr emits a warning-level diagnostic carrying an error, e.g. for a
// callback failure that was offered to an unhandled-failure hook and
// dropped.
func WarnErr(component, msg string, err error) {
	Default().Warning().Str("component", component).Err(err).Log(msg)
}
