package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger for the given environment. Production
// emits JSON lines; everything else gets the readable text handler.
func NewLogger(env string) *slog.Logger {
	if env == "prod" || env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "creditedge")
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
