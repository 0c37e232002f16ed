// Package logging wraps *zap.SugaredLogger behind a small named type so
// the rest of the tree depends on cinemad/internal/logging rather than
// go.uber.org/zap directly, matching the SugaredLogger-over-engine idiom
// of iamNilotpal-ignite/internal/engine/engine.go (a *zap.SugaredLogger
// field threaded through the whole call chain).
package logging

import (
	"go.uber.org/zap"
)

// Logger is a structured, leveled logger. The zero value is not usable;
// construct one with New.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a Logger. debug selects zap's human-readable development
// encoder; otherwise the JSON production encoder is used, the way an
// operator would want it running as a background service.
func New(debug bool) (*Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: base.Sugar()}, nil
}

// Sync flushes any buffered log entries. Callers should defer it from
// main; errors from Sync on a terminal fd are routinely spurious and are
// intentionally ignored by callers, not by this method.
func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}

// Named returns a Logger scoped under name, for components that want
// their own prefix in every line (e.g. "store", "server").
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}
