package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqlsh/internal/cli"
	"github.com/leapstack-labs/sqlsh/internal/cli/config"
)

// connectionFlags are listed apart from the other global options, in the
// order the mysql client documents them.
var connectionFlags = []string{"type", "host", "port", "user", "password", "database", "path", "profile"}

// generateCLIDocs writes index.md plus one page per visible subcommand.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": renderCLIIndex(rootCmd)}
	for _, cmd := range documentedCommands(rootCmd) {
		pages[cmd.Name()+".md"] = renderCommandPage(cmd)
	}

	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documentedCommands returns the subcommands that get a page.
func documentedCommands(rootCmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func renderCLIIndex(rootCmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for sqlsh")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(rootCmd.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/sqlsh/cmd/sqlsh@latest")

	w.Header(2, "Basic Usage")
	w.CodeBlock("bash", "sqlsh [options]\nsqlsh [options] <command>")
	w.CodeBlock("bash", cleanExample(rootCmd.Example))

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documentedCommands(rootCmd) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	persistent := rootCmd.PersistentFlags()
	w.Header(2, "Connection Options")
	w.Paragraph("Short flags follow the mysql client, so `-h` is the host and `-p` without a value prompts for the password. Help is only available as `--help`.")
	writeFlagsTable(w, persistent, isConnectionFlag)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, persistent, func(f *pflag.Flag) bool { return !isConnectionFlag(f) })

	if local := rootCmd.LocalNonPersistentFlags(); local.HasAvailableFlags() {
		w.Header(2, "Shell Options")
		writeFlagsTable(w, local, nil)
	}

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every configuration key can be set with an `%s` variable, for example:", config.EnvPrefix))
	w.Table([]string{"Variable", "Description"}, [][]string{
		{InlineCode(config.EnvPrefix + "TYPE"), "Database type"},
		{InlineCode(config.EnvPrefix + "HOST"), "Server host"},
		{InlineCode(config.EnvPrefix + "USER"), "User name"},
		{InlineCode(config.EnvPrefix + "PASSWORD"), "Password"},
		{InlineCode(config.EnvPrefix + "DATABASE"), "Database to use"},
		{InlineCode(config.EnvPrefix + "PROFILE"), "Profile from the config file"},
		{InlineCode(config.EnvPrefix + "METADATA_TTL"), "Metadata cache lifetime, e.g. `10m`"},
	})
	w.Paragraph("Command-line flags take precedence over environment variables, which take precedence over the selected profile and the config file.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, including the first failing statement of a batch (check stderr)"},
	})

	w.Header(2, "Getting Help")
	w.CodeBlock("bash", `sqlsh --help
sqlsh complete --help

# Inside the shell
\h`)

	return w.Bytes()
}

func renderCommandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", usageLine(cmd))

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		var aliases []string
		for _, alias := range cmd.Aliases {
			aliases = append(aliases, InlineCode(alias))
		}
		w.BulletList(aliases)
	}

	if cmd.HasSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if !sub.Hidden {
				rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
			}
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if local := cmd.LocalNonPersistentFlags(); local.HasAvailableFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, local, nil)
	}

	// Commands that never connect do not need the connection flags.
	if cmd.HasInheritedFlags() && needsConnection(cmd) {
		w.Header(2, "Connection Options")
		writeFlagsTable(w, cmd.InheritedFlags(), isConnectionFlag)
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	return w.Bytes()
}

func usageLine(cmd *cobra.Command) string {
	if cmd.HasSubCommands() {
		return fmt.Sprintf("sqlsh %s <subcommand> [options]", cmd.Name())
	}
	line := cmd.UseLine()
	if !strings.HasPrefix(line, "sqlsh") {
		line = "sqlsh " + line
	}
	return line
}

func needsConnection(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "completion":
		return false
	}
	return true
}

func isConnectionFlag(f *pflag.Flag) bool {
	for _, name := range connectionFlags {
		if f.Name == name {
			return true
		}
	}
	return false
}

// writeFlagsTable writes the flags accepted by keep, or all visible flags
// when keep is nil.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet, keep func(*pflag.Flag) bool) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden || (keep != nil && !keep(f)) {
			return
		}
		rows = append(rows, flagRow(f))
	})
	if len(rows) > 0 {
		w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
	}
}

// flagRow renders one flag as Option, Short, Default and Description cells.
func flagRow(f *pflag.Flag) []string {
	short := ""
	if f.Shorthand != "" {
		short = "-" + f.Shorthand
	}

	def := f.DefValue
	switch def {
	case "0", "0s":
		// Zero means "use the configured or built-in default".
		def = ""
	case "", "false", "true":
	default:
		def = InlineCode(def)
	}
	if f.NoOptDefVal == config.PasswordPrompt {
		def = "prompt when given without a value"
	}

	return []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)}
}

// cleanExample removes common leading whitespace from example text.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.TrimSpace(example)
	}

	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
