package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlsh/internal/cli/config"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after merging defaults, the config file, the
selected profile, SQLSH_* environment variables and flags.

Passwords are masked.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContextWithoutSession(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cmdCtx.Cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	r := cmdCtx.Renderer
	if path := config.GetConfigFileUsed(); path != "" {
		r.Println(r.Muted("# " + path))
	} else {
		r.Println(r.Muted("# no config file found"))
	}
	r.Printf("%s", data)
	return nil
}
