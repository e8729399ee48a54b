package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlsh/internal/cli/output"
)

// CompleteOptions holds options for the complete command.
type CompleteOptions struct {
	Cursor int
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand() *cobra.Command {
	opts := &CompleteOptions{}

	cmd := &cobra.Command{
		Use:   "complete <sql>",
		Short: "Print completion suggestions for a partial statement",
		Long: `Connect, load metadata and print the suggestions the interactive shell
would offer for the given text.

The cursor defaults to the end of the text. Trailing spaces matter:
"SELECT * FROM " completes table names, "SELECT * FROM" does not.`,
		Example: `  # Tables in the current database
  sqlsh complete "SELECT * FROM "

  # Columns of the referenced table, as JSON
  sqlsh -T sqlite --path app.db complete -f json "SELECT * FROM users WHERE "

  # Complete in the middle of a statement
  sqlsh complete --cursor 7 "SELECT  FROM users"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Cursor, "cursor", -1, "Byte offset of the cursor (default: end of input)")

	return cmd
}

func runComplete(cmd *cobra.Command, line string, opts *CompleteOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cmdCtx.Session.Rehash(cmd.Context(), true); err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}

	cursor := opts.Cursor
	if cursor < 0 || cursor > len(line) {
		cursor = len(line)
	}

	engine := cmdCtx.Session.Engine
	inputCtx, strategy := engine.Explain(line[:cursor])
	start, items := engine.Complete(line, cursor)
	cmdCtx.Logger.Debug("completed",
		slog.String("context", inputCtx.String()),
		slog.String("strategy", strategy),
		slog.Int("start", start),
		slog.Int("suggestions", len(items)))

	r := cmdCtx.Renderer
	if r.Mode() == output.ModeTable {
		_, _ = fmt.Fprintln(r.ErrWriter(), r.Muted(fmt.Sprintf("Context: %s, word %q at offset %d", inputCtx, line[start:cursor], start)))
	}
	return r.Suggestions(items)
}
