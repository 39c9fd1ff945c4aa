package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	baseMu sync.Mutex
	base   *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *zap.SugaredLogger
	config interface{}
}

// -----------------------------------------------------------------------------

// Init builds the shared zap core. Safe to call more than once; the last
// level wins.
func Init(logLevel string) {
	baseMu.Lock()
	defer baseMu.Unlock()

	level.SetLevel(ParseLevel(logLevel))
	if base != nil {
		return
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)
	base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// -----------------------------------------------------------------------------

// ParseLevel maps DEBUG|INFO|WARNING|ERROR (any case) to a zap level.
// Unknown values fall back to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance
func NewLogger(config interface{}, name string) *Logger {
	baseMu.Lock()
	ready := base != nil
	baseMu.Unlock()
	if !ready {
		Init("INFO")
	}

	return &Logger{
		name:   name,
		logger: base.Named(name).Sugar(),
		config: config,
	}
}

// -----------------------------------------------------------------------------

// With returns a child logger that attaches the key/value pairs to every line.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		name:   l.name,
		logger: l.logger.With(keysAndValues...),
		config: l.config,
	}
}

// -----------------------------------------------------------------------------

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.logger.Desugar()
}

// -----------------------------------------------------------------------------

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Errorw(msg, "severity", "CRITICAL")
	_ = l.logger.Sync()
	os.Exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}
