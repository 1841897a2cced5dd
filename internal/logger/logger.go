// Package logger provides component-scoped logging for netinfo.
//
// Every package obtains its own logger through NewComponentLogger so that log
// lines carry the component that produced them. Messages use printf-style
// formatting. The backend is zap: a console encoder on stderr, optionally teed
// into an append-only log file when Initialize is given a path.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// zapLevel maps a LogLevel onto the zap level it is emitted at
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLogLevel converts a string to a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger is a component logger backed by a zap SugaredLogger
type Logger struct {
	component string
	sugar     *zap.SugaredLogger
}

var (
	globalLogger *Logger
	globalBase   *zap.Logger
	globalLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	globalMu     sync.RWMutex
)

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

// newCore builds the zap core writing to stderr and, when set, to logFile
func newCore(logFile string) (zapcore.Core, error) {
	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), globalLevel),
	}

	if logFile != "" {
		// Create log directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), globalLevel))
	}

	return zapcore.NewTee(cores...), nil
}

// Initialize sets up the global logger. An empty logFile logs to stderr only.
func Initialize(logFile string, level string) error {
	globalLevel.SetLevel(ParseLogLevel(level).zapLevel())

	core, err := newCore(logFile)
	if err != nil {
		return err
	}

	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	globalMu.Lock()
	globalBase = base
	globalLogger = &Logger{
		component: "main",
		sugar:     base.Sugar().Named("main"),
	}
	globalMu.Unlock()

	return nil
}

// SetLevel changes the level of every logger created from this package
func SetLevel(level string) {
	globalLevel.SetLevel(ParseLogLevel(level).zapLevel())
}

// Sync flushes buffered log entries
func Sync() {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalLogger != nil {
		_ = globalLogger.sugar.Sync()
	}
}

// NewComponentLogger creates a new logger for a specific component
func NewComponentLogger(component string) *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalLogger == nil {
		// Fallback to stderr if global logger not initialized
		core, _ := newCore("")
		base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
		return &Logger{
			component: component,
			sugar:     base.Sugar().Named(component),
		}
	}

	return &Logger{
		component: component,
		sugar:     globalBase.Sugar().Named(component),
	}
}

// NewNopLogger returns a logger that discards everything, for tests
func NewNopLogger(component string) *Logger {
	return &Logger{
		component: component,
		sugar:     zap.NewNop().Sugar(),
	}
}

// Component returns the component name the logger was created for
func (l *Logger) Component() string {
	return l.component
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// ErrorWithContext logs an error with additional context
func (l *Logger) ErrorWithContext(err error, context string, args ...interface{}) {
	contextMsg := fmt.Sprintf(context, args...)
	l.sugar.Errorw(contextMsg, "error", err)
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{
		component: l.component,
		sugar:     l.sugar.With(key, value),
	}
}

func global() *Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()

	if logger == nil {
		return NewComponentLogger("main")
	}
	return logger
}

// Global logging functions for code without a component logger
func Debug(format string, args ...interface{}) {
	global().Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	global().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	global().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	global().Error(format, args...)
}

func ErrorWithContext(err error, context string, args ...interface{}) {
	global().ErrorWithContext(err, context, args...)
}
