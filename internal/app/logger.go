package app

import (
	"io"
	"log/slog"
)

// newLogger builds the isolated logger of one App from the validated log
// level and format. The global logger is left alone.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(outW, opts)
	default:
		handler = slog.NewTextHandler(outW, opts)
	}
	if cfg.DryRun {
		handler = handler.WithAttrs([]slog.Attr{slog.Bool("dry_run", true)})
	}
	return slog.New(handler)
}
