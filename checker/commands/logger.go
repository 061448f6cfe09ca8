package commands

import (
	"io"
	"log/slog"

	"github.com/makeitchaccha/fluent-locale-checker/checker"
)

func setupLogger(cfg checker.LogConfig, w io.Writer) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.AddSource,
		Level:     cfg.Level,
	}

	var sHandler slog.Handler
	switch cfg.Format {
	case "json":
		sHandler = slog.NewJSONHandler(w, opts)
	default:
		sHandler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(sHandler))
}
