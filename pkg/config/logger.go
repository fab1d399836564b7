package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/golang-cz/devslog"
	"github.com/mattn/go-isatty"
)

// NewLogger builds the process logger: a colorized development handler when
// stderr is a terminal, JSON otherwise.
func NewLogger(cfg *Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel)

	var handler slog.Handler
	if cfg.Env == "development" && isatty.IsTerminal(os.Stderr.Fd()) {
		handler = devslog.NewHandler(os.Stderr, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{Level: level},
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
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
