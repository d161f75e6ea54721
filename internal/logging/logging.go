// Package logging configures the slog logger shared by every sync
// component.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process-wide text logger, installs it as the slog
// default, and returns it. level accepts "debug", "info", "warn" or
// "error" (case-insensitive); anything else, including the empty string
// when HEARTH_LOG_LEVEL is unset, means info. The sync paths log remote
// failures at warn/error and per-record detail at debug, so debug is the
// level to run when diagnosing a reconciliation.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
