package logger

import (
	"log/slog"
	"os"
	"strings"
)

var root *slog.Logger

// Init configures the process-wide logger. level is one of debug, info,
// warn, error; json switches the handler to JSON output for log shippers.
func Init(level string, json bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if json {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	root = slog.New(handler)
	slog.SetDefault(root)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// log returns the configured logger, initializing a sane default when Init
// was never called (tests, one-off tools)
func log() *slog.Logger {
	if root == nil {
		Init("info", false)
	}
	return root
}

func Debug(msg string, args ...any) { log().Debug(msg, args...) }
func Info(msg string, args ...any)  { log().Info(msg, args...) }
func Warn(msg string, args ...any)  { log().Warn(msg, args...) }
func Error(msg string, args ...any) { log().Error(msg, args...) }

// Fatal logs at error level and exits the process
func Fatal(msg string, args ...any) {
	log().Error(msg, args...)
	os.Exit(1)
}
