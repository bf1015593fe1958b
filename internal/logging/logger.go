package logging

import (
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

// Init initializes the global structured logger. Demo programs call it
// once at the top of their pulumi.Run closure; the level comes from the
// DEMO_LOG_LEVEL environment variable.
func Init() {
	var lvl slog.Level
	switch strings.ToLower(os.Getenv("DEMO_LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	if logger == nil {
		Init()
	}
	return logger
}

// Phase logs the start of a demo phase, e.g. "resolving parameters" or
// "declaring network topology".
func Phase(name string, args ...any) {
	Logger().Info(name, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
