package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Logger is a named logger. Every line carries a "[name>]" prefix and a
// service field so output can be filtered per component.
type Logger struct {
	name  string
	entry *logrus.Entry
}

var (
	// base is shared by all named loggers; level gating happens here for
	// info/warn/error and per service for debug.
	base = newBase(os.Stderr)

	globalDebug  atomic.Bool
	serviceDebug sync.Map // map[string]*atomic.Bool
	loggers      sync.Map // map[string]*Logger
)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
		DisableColors:   true,
	})
	return l
}

// ForService returns (and memoizes) a named logger.
func ForService(name string) *Logger {
	if name == "" {
		name = "unknown"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	logger := &Logger{name: name, entry: base.WithField("service", name)}
	actual, _ := loggers.LoadOrStore(name, logger)
	return actual.(*Logger)
}

func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

func GlobalDebug() bool {
	return globalDebug.Load()
}

// EnableDebugFor turns on debug output for a single service.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	val, _ := serviceDebug.LoadOrStore(name, &atomic.Bool{})
	val.(*atomic.Bool).Store(true)
}

func DisableDebugFor(name string) {
	if name == "" {
		return
	}
	if val, ok := serviceDebug.Load(name); ok {
		val.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether debug is on globally or for name.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if val, ok := serviceDebug.Load(name); ok {
		return val.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput redirects all loggers, existing ones included.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	base.SetOutput(w)
}

// WithField returns a logrus entry scoped to this logger's service.
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	return l.entry.WithField(key, value)
}

func (l *Logger) prefix() string {
	return "[" + l.name + ">]"
}

func (l *Logger) Infof(format string, args ...any) {
	l.entry.Info(l.prefix() + " " + fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.entry.Warn(l.prefix() + " " + fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.entry.Error(l.prefix() + " " + fmt.Sprintf(format, args...))
}

// Debugf only writes when debug is enabled for this logger's service.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.entry.Debug(l.prefix() + " " + fmt.Sprintf(format, args...))
}
