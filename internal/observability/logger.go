package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger, tagged with trace ids when a span is
// active, and installs it as the slog default.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	log := slog.New(NewTraceHandler(handler))
	slog.SetDefault(log)

	return log
}
