// Package hlog provides the structured logger used across the engine:
// leveled, structured logging the way a production Go service does it,
// in place of bare log.Printf calls.
package hlog

import "go.uber.org/zap"

// Logger wraps a zap.SugaredLogger, kept as a thin named type so
// callers depend on hlog rather than directly on zap.
type Logger struct {
	s *zap.SugaredLogger
}

// New returns a production-configured Logger (JSON encoding, info
// level and above).
func New() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar()}, nil
}

// NewDevelopment returns a human-readable, debug-level Logger suited
// to cmd/ tools and tests.
func NewDevelopment() (*Logger, error) {
	z, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar()}, nil
}

// Nop returns a Logger that discards everything, for callers that
// don't want to thread a real logger through.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Debugw(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *Logger) Infow(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *Logger) Errorw(msg string, kv ...any) { l.s.Errorw(msg, kv...) }


// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.s.Sync() }

// With returns a Logger with kv appended to every subsequent entry.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{s: l.s.With(kv...)}
}
