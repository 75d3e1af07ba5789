package logger

import (
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	current atomic.Pointer[zap.Logger]
)

func init() {
	SetLogsOutput(os.Stderr)
}

func newConsoleLogger(w io.Writer) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level)
	return zap.New(core).Named("regression")
}

// L returns the logger shared by every package of the module.
func L() *zap.Logger {
	return current.Load()
}

// SetLogger replaces the shared logger, e.g. with the one a command built from its flags.
// A nil logger silences all output.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// SetLogsOutput redirects all log messages to w using the console encoder.
func SetLogsOutput(w io.Writer) {
	current.Store(newConsoleLogger(w))
}

// SetLevel changes the minimum level of the console logger.
// It has no effect on loggers installed with SetLogger.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Debug logs a debug level message
func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

// Info logs an information level message
func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

// Warn logs a warning level message
func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

// Err logs an error level message
func Err(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
