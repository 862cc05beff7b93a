// Package observability wires structured logging for the pipeline.
package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/skywatch/satpass/internal/config"
)

// NewLogger builds the process logger from LOG_LEVEL/LOG_FORMAT. Progress
// narration goes to stderr so stdout stays reserved for the digest preview.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
