// Package log is a small leveled-logging facade, carried over in shape from
// the teacher's own log subpackage (imported there as
// "github.com/saferwall/pe/log"): a Logger interface any backend can
// satisfy, a Filter that drops records below a configured Level, and a
// Helper that adds printf-style convenience methods on top.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Level is a log severity, ordered so that filtering by "at least this
// level" is a simple integer comparison.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal backend interface: one structured log call, key-value
// pairs after the level.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes each record as a single line to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes plain lines to w.
func NewStdLogger(w io.Writer) Logger { return &stdLogger{w: w} }

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, "[%s] %s\n", level, fmt.Sprint(keyvals...))
	return err
}

// Option configures a Filter.
type Option func(*filterLogger)

// FilterLevel sets the minimum level a Filter passes through to its
// underlying Logger.
func FilterLevel(level Level) Option {
	return func(f *filterLogger) { f.level = level }
}

type filterLogger struct {
	next  Logger
	level Level
}

// NewFilter wraps next with a Logger that drops any record below the level
// set by FilterLevel (LevelDebug, i.e. no filtering, if unset).
func NewFilter(next Logger, opts ...Option) Logger {
	f := &filterLogger{next: next, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filterLogger) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper adds printf-style convenience methods over a Logger, matching the
// call sites the teacher's parsers use (Errorf/Warnf/Debugf) rather than
// the raw key-value Log method.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with printf-style methods.
func NewHelper(logger Logger) *Helper { return &Helper{logger: logger} }

func (h *Helper) logf(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, fmt.Sprintf(format, args...))
}

// Debugf logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) { h.logf(LevelDebug, format, args...) }

// Infof logs at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) { h.logf(LevelInfo, format, args...) }

// Warnf logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) { h.logf(LevelWarn, format, args...) }

// Errorf logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) { h.logf(LevelError, format, args...) }
