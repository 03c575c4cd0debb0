// Package logger configures the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Init installs the default slog logger from the config strings.
// Unrecognized values fall back to pretty output at info level.
func Init(format, level string) {
	slog.SetDefault(slog.New(newHandler(format, parseLevel(level))))
}

// newHandler picks the output format: "json" and "text" map to the
// stdlib handlers, anything else gets colorized tint output.
func newHandler(format string, level slog.Level) slog.Handler {
	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case "text":
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		return tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
