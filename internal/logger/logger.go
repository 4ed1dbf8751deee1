// Package logger is a process-wide registry of named loggers. Requesting
// the same name twice returns the same instance, so components can grab
// their logger at construction time without duplicating handlers.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	loggers = make(map[string]*slog.Logger)
	base    *slog.Logger
)

// Get returns the logger registered under name, creating it on first use.
func Get(name string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	if base == nil {
		base = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	l := base.With("name", name)
	loggers[name] = l
	return l
}

// SetBase replaces the handler future loggers derive from. Existing
// entries are rebuilt so tests can capture output.
func SetBase(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()

	base = l
	for name := range loggers {
		loggers[name] = base.With("name", name)
	}
}
