package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsh/internal/cli/config"
	"github.com/leapstack-labs/sqlsh/internal/cli/output"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Session  *Session
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a connected session and
// a renderer. The cleanup function closes the connection.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx, err := NewCommandContextWithoutSession(cmd)
	if err != nil {
		return nil, nil, err
	}

	session, err := OpenSession(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Session = session
	cmdCtx.Logger.Debug("connected",
		slog.String("type", cmdCtx.Cfg.Type),
		slog.String("session", session.ID.String()))

	cleanup := func() {
		if err := session.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close connection", slog.String("error", err.Error()))
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutSession creates a CommandContext without
// connecting. Useful for commands that don't need database access.
func NewCommandContextWithoutSession(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Format))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// getConfig returns the configuration loaded by the root command, or
// loads it from the default locations and environment.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}
