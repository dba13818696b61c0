package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide JSON logger, tagged with the app name and
// environment. Debug level is reserved for dev deployments.
func New(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts)).With(
		slog.String("app", "taller-backend"),
		slog.String("env", env),
	)
}
