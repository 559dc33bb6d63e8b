package platform

import (
	"log/slog"
	"os"
)

// NewLogger creates a structured logger that writes to stderr. Stdout is
// reserved for the switch result line, which the calling orchestrator
// parses.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
