package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"

	"github.com/leapstack-labs/sqlsh/internal/cli/config"
)

// NewLogger creates the process logger. Records go to w as charm text
// lines; verbose forces debug level and adds timestamps.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	if cfg.Verbose {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Prefix:          "sqlsh",
		Level:           level,
		ReportTimestamp: cfg.Verbose,
		TimeFormat:      time.TimeOnly,
		Formatter:       log.TextFormatter,
	})
	return slog.New(handler)
}
