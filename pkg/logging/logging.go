// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.Setup("text", "info")            // colored tint output on stderr
//	logging.Setup("json", "debug")           // JSON lines on stdout
//	logging.SetupWithLevel(slog.LevelDebug)  // tint with explicit level
//
// The format and level usually come from LOG_FORMAT and LOG_LEVEL.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures the default logger. format "json" selects a JSON handler
// on stdout; anything else selects colored tint output on stderr.
func Setup(format, level string) {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: lvl,
		})))
		return
	}
	SetupWithLevel(lvl)
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	))
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
