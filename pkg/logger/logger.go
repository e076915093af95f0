// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// L returns the process logger, or nil if logging is uninitialized.
func L() *zap.Logger {
	return log
}

// InitializeWithFallback sets up the global zap logger. It prefers a JSON
// logger writing to stdout plus the postflight log file; if the log path
// cannot be prepared it falls back to a console stderr logger so commands
// never run unlogged.
func InitializeWithFallback() {
	logPath := ResolveLogPath()
	if logPath != "" {
		cfg := defaultConfig(logPath)
		if l, err := cfg.Build(); err == nil {
			log = l
			zap.ReplaceGlobals(log)
			return
		}
	}
	InitFallback()
}

// InitFallback installs a console logger on stderr. Safe to call more than
// once; it never replaces an already working logger.
func InitFallback() {
	if log != nil {
		return
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	log = l
	zap.ReplaceGlobals(log)
}

// Sync flushes buffered log entries. Sync errors on stdout/stderr are
// expected on some platforms and ignored.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// ResolveLogPath picks the log file location: the system log directory when
// writable, otherwise a dot directory under the user's home. Empty string
// means no file logging is possible.
func ResolveLogPath() string {
	candidates := []string{
		"/var/log/postflight/postflight.log",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".postflight", "postflight.log"))
	}
	for _, c := range candidates {
		if err := ensureLogPermissions(c); err == nil {
			return c
		}
	}
	return ""
}

// ensureLogPermissions creates the log directory and file with owner-only
// access (0700 dir, 0600 file).
func ensureLogPermissions(logFilePath string) error {
	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return os.Chmod(logFilePath, 0o600)
}

func defaultConfig(logPath string) zap.Config {
	return zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLogLevel(os.Getenv("POSTFLIGHT_LOG_LEVEL"))),
		Development:      os.Getenv("POSTFLIGHT_ENV") == "development",
		Encoding:         "json",
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
}

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
