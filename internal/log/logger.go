// Package log is the application logger. It wraps logrus so call sites can
// use either the package-level printf helpers or structured fields:
//
//	log.LogWithFields(log.F("path", p)).Info("Loaded metadata")
package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"imgmeta/internal/errors"
)

var (
	mu      sync.RWMutex
	isDebug = false
	logger  = NewLogger()
)

// Logger is a configured logrus logger. The debug switch is shared by all
// loggers, see SetDebug.
type Logger struct {
	l    *logrus.Logger
	file *os.File
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sends log lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(lg *Logger) {
		lg.l.SetOutput(w)
	}
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(lg *Logger) {
		lg.l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	}
}

// WithFile tees output to the current writer and the file at path. Failing to open the
// file leaves the output unchanged.
func WithFile(path string) Option {
	return func(lg *Logger) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			lg.l.WithError(err).Warn("could not open log file")
			return
		}
		lg.file = f
		lg.l.SetOutput(io.MultiWriter(lg.l.Out, f))
	}
}

// NewLogger creates a text logger writing to stdout.
func NewLogger(opts ...Option) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	lg := &Logger{l: l}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Configure replaces the package logger.
func Configure(opts ...Option) {
	mu.Lock()
	defer mu.Unlock()
	logger = NewLogger(opts...)
}

// SetDebug enables debug output for every logger.
func SetDebug(debug bool) {
	mu.Lock()
	isDebug = debug
	mu.Unlock()
}

func debugEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return isDebug
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Close releases the log file, if any.
func (lg *Logger) Close() error {
	if lg.file == nil {
		return nil
	}
	return lg.file.Close()
}

// Field is one structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func toLogrus(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

// Entry is a logger with attached fields.
type Entry struct {
	e *logrus.Entry
}

// With returns an entry carrying fields.
func (lg *Logger) With(fields ...Field) *Entry {
	return &Entry{e: lg.l.WithFields(toLogrus(fields))}
}

func (lg *Logger) Info(msg string)                          { lg.l.Info(msg) }
func (lg *Logger) Infof(format string, args ...interface{}) { lg.l.Infof(format, args...) }
func (lg *Logger) Warn(msg string)                          { lg.l.Warn(msg) }
func (lg *Logger) Warnf(format string, args ...interface{}) { lg.l.Warnf(format, args...) }
func (lg *Logger) Error(msg string)                         { lg.l.Error(msg) }
func (lg *Logger) Errorf(format string, args ...interface{}) {
	lg.l.Errorf(format, args...)
}

func (lg *Logger) Debug(msg string) {
	if debugEnabled() {
		lg.l.Debug(msg)
	}
}

func (lg *Logger) Debugf(format string, args ...interface{}) {
	if debugEnabled() {
		lg.l.Debugf(format, args...)
	}
}

// With adds more fields.
func (e *Entry) With(fields ...Field) *Entry {
	return &Entry{e: e.e.WithFields(toLogrus(fields))}
}

func (e *Entry) Info(msg string)                           { e.e.Info(msg) }
func (e *Entry) Infof(format string, args ...interface{})  { e.e.Infof(format, args...) }
func (e *Entry) Warn(msg string)                           { e.e.Warn(msg) }
func (e *Entry) Warnf(format string, args ...interface{})  { e.e.Warnf(format, args...) }
func (e *Entry) Error(msg string)                          { e.e.Error(msg) }
func (e *Entry) Errorf(format string, args ...interface{}) { e.e.Errorf(format, args...) }

func (e *Entry) Debug(msg string) {
	if debugEnabled() {
		e.e.Debug(msg)
	}
}

func (e *Entry) Debugf(format string, args ...interface{}) {
	if debugEnabled() {
		e.e.Debugf(format, args...)
	}
}

// LogWithFields returns a package-logger entry carrying fields.
func LogWithFields(fields ...Field) *Entry {
	return current().With(fields...)
}

// LogWithError returns an entry describing err: its message, kind and the
// path or parameter it refers to.
func LogWithError(err error) *Entry {
	fields := []Field{F("error", fmt.Sprintf("%v", err))}
	if err != nil {
		fields = append(fields, F("error_kind", int(errors.KindOf(err))))

		var fileErr *errors.FileError
		var cfgErr *errors.ConfigError
		var metaErr *errors.MetadataError
		switch {
		case errors.As(err, &metaErr):
			if metaErr.Path() != "" {
				fields = append(fields, F("path", metaErr.Path()))
			}
			if metaErr.Operation() != "" {
				fields = append(fields, F("operation", metaErr.Operation()))
			}
		case errors.As(err, &fileErr):
			if fileErr.Path() != "" {
				fields = append(fields, F("path", fileErr.Path()))
			}
		case errors.As(err, &cfgErr):
			if cfgErr.Param() != "" {
				fields = append(fields, F("param", cfgErr.Param()))
			}
		}
	}
	return LogWithFields(fields...)
}

// LogError logs err at error level.
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}

func Info(format string, args ...interface{}) {
	current().Infof(format, args...)
}

func Infof(format string, args ...interface{}) {
	current().Infof(format, args...)
}

// Debug logs a message with arguments
func Debug(msg string, args ...interface{}) {
	if len(args) == 0 {
		current().Debug(msg)
		return
	}
	current().Debugf(msg+": %v", args...)
}

// Debugf logs a formatted message
func Debugf(format string, args ...interface{}) {
	current().Debugf(format, args...)
}

// Error logs an error message with arguments
func Error(msg string, args ...interface{}) {
	if len(args) == 0 {
		current().Error(msg)
		return
	}
	current().Errorf(msg+": %v", args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	current().Errorf(format, args...)
}

// Warn logs a warning message with arguments
func Warn(msg string, args ...interface{}) {
	if len(args) == 0 {
		current().Warn(msg)
		return
	}
	current().Warnf(msg+": %v", args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	current().Warnf(format, args...)
}
