// Package cli provides the command-line interface for sqlsh.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqlsh/internal/cli/commands"
	"github.com/leapstack-labs/sqlsh/internal/cli/config"
	"github.com/leapstack-labs/sqlsh/pkg/adapter"

	// Register adapters
	_ "github.com/leapstack-labs/sqlsh/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/sqlsh/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/sqlsh/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/sqlsh/pkg/adapters/sqlite"
)

var (
	cfgFile string
	execute string
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlsh",
		Short: "sqlsh - interactive SQL shell with context-aware completion",
		Long: `sqlsh is an interactive SQL shell for MySQL, PostgreSQL, SQLite and DuckDB.

Tab completion follows the statement being typed: table names after FROM,
columns of the referenced tables after WHERE, databases after USE. Schema
metadata is cached and refreshed in the background.

With -e or piped input, statements run in batch mode and the first error
stops execution.`,
		Example: `  # Connect to MySQL
  sqlsh -h db.internal -u app -p -D shop

  # Open a SQLite file
  sqlsh -T sqlite --path app.db

  # Run statements and exit
  sqlsh -T postgres -D analytics -e "SELECT count(*) FROM events"

  # Pipe a script
  sqlsh --profile staging < migrate.sql`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help, completion and version
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := promptPassword(cmd, cfg); err != nil {
				return err
			}

			logger := NewLogger(cmd.ErrOrStderr(), cfg)
			cmd.SetContext(context.WithValue(cmd.Context(), config.LoggerKey(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", slog.String("path", configFile))
			}
			if cfg.Profile != "" {
				logger.Debug("using profile", slog.String("profile", cfg.Profile))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.RunShell(cmd, execute)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	// -h is the host, as in the mysql client, so help is long-only.
	flags.Bool("help", false, "help for sqlsh")
	flags.StringVar(&cfgFile, "config", "", "config file (default: sqlsh.yaml in . or a parent, then ~/.config/sqlsh)")
	flags.StringP("type", "T", "", "Database type (mysql|postgres|sqlite|duckdb)")
	flags.StringP("host", "h", "", "Server host")
	flags.IntP("port", "P", 0, "Server port (default: 3306 for mysql, 5432 for postgres)")
	flags.StringP("user", "u", "", "User name")
	flags.StringP("password", "p", "", "Password; with no value, prompt for it")
	flags.Lookup("password").NoOptDefVal = config.PasswordPrompt
	flags.StringP("database", "D", "", "Database to use")
	flags.String("path", "", "Database file for sqlite and duckdb (default: in-memory)")
	flags.StringP("format", "f", "", "Result format (table|json|csv|markdown)")
	flags.BoolP("no-auto-rehash", "A", false, "Do not load metadata for completion at startup")
	flags.String("history-file", "", "Readline history file (default: ~/.sqlsh_history)")
	flags.Duration("metadata-ttl", 0, "How long cached metadata stays fresh (default: 5m)")
	flags.String("profile", "", "Profile from the config file to use")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.BoolP("verbose", "v", false, "Verbose output (debug logging)")

	rootCmd.Flags().StringVarP(&execute, "execute", "e", "", "Execute statements and exit")

	_ = rootCmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.LogLevels, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewCompleteCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// promptPassword reads the password from the terminal when -p was given
// without a value.
func promptPassword(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags().Lookup("password")
	if f == nil || !f.Changed || f.Value.String() != config.PasswordPrompt {
		return nil
	}
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return errors.New("cannot prompt for a password without a terminal; use --password=<value> or SQLSH_PASSWORD")
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
	password, err := term.ReadPassword(int(in.Fd()))
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	cfg.Password = string(password)
	return nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlsh.

To load completions:

Bash:
  $ source <(sqlsh completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sqlsh completion bash > /etc/bash_completion.d/sqlsh
  # macOS:
  $ sqlsh completion bash > $(brew --prefix)/etc/bash_completion.d/sqlsh

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sqlsh completion zsh > "${fpath[1]}/_sqlsh"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sqlsh completion fish | source

  # To load completions for each session, execute once:
  $ sqlsh completion fish > ~/.config/fish/completions/sqlsh.fish

PowerShell:
  PS> sqlsh completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> sqlsh completion powershell > sqlsh.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
