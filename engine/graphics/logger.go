package graphics

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// activeLogger is the logger used by the graphics packages. Defaults to a
// no-op logger so the engine is silent unless the host application opts in.
var activeLogger atomic.Pointer[slog.Logger]

func init() {
	activeLogger.Store(slog.New(nopHandler{}))
}

// SetLogger routes engine log output to the given logger. Passing nil restores
// the default no-op logger.
//
// Parameters:
//   - l: the logger to use, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	activeLogger.Store(l)
}

// logger returns the current engine logger.
func logger() *slog.Logger {
	return activeLogger.Load()
}

// nopHandler is an slog.Handler that discards all records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
