package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/sqlsh/internal/cli/output"
)

// metaCommand is a backslash command handled by the shell itself.
type metaCommand struct {
	name    string
	aliases []string
	args    string
	help    string
	// run returns true when the shell should exit.
	run func(ctx context.Context, sh *Shell, args string) bool
}

var metaCommands []metaCommand

func init() {
	metaCommands = []metaCommand{
		{name: `\q`, aliases: []string{"quit", "exit"}, help: "Exit the shell", run: metaQuit},
		{name: `\h`, aliases: []string{`\?`, "help"}, help: "Show this help", run: metaHelp},
		{name: `\c`, help: "Clear the current input statement", run: metaClear},
		{name: `\s`, aliases: []string{"status"}, help: "Show connection and metadata status", run: metaStatus},
		{name: `\d`, help: "List databases", run: metaDatabases},
		{name: `\t`, args: "[db]", help: "List tables in the current or given database", run: metaTables},
		{name: `\u`, args: "<db>", help: "Use another database", run: metaUse},
		{name: `\r`, aliases: []string{"rehash"}, help: "Reload completion metadata", run: metaRehash},
		{name: `\suggest`, args: "<sql>", help: "Show completion suggestions for <sql>", run: metaSuggest},
	}
}

func (c metaCommand) matches(name string) bool {
	if name == c.name {
		return true
	}
	for _, alias := range c.aliases {
		if strings.EqualFold(name, alias) {
			return true
		}
	}
	return false
}

// lookupMeta finds the meta command that line starts with. args is the
// rest of the line after the separating space, untrimmed.
func lookupMeta(line string) (metaCommand, string, bool) {
	name, args, _ := strings.Cut(line, " ")
	name = strings.TrimSuffix(strings.TrimSpace(name), ";")
	if name == "" {
		return metaCommand{}, "", false
	}
	for _, c := range metaCommands {
		if c.matches(name) {
			return c, args, true
		}
	}
	return metaCommand{}, "", false
}

// argument trims a meta command argument and its optional terminator.
func argument(args string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(args), ";"))
}

func metaQuit(context.Context, *Shell, string) bool {
	return true
}

func metaClear(_ context.Context, sh *Shell, _ string) bool {
	sh.Reset()
	return false
}

func metaHelp(_ context.Context, sh *Shell, _ string) bool {
	sh.r.Println(sh.r.Header("sqlsh commands"))
	for _, c := range metaCommands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		if len(c.aliases) > 0 {
			usage += " (" + strings.Join(c.aliases, ", ") + ")"
		}
		sh.r.Printf("  %-28s %s\n", usage, sh.r.Muted(c.help))
	}
	sh.r.Println()
	sh.r.Println("End statements with ; or \\g, or with \\G for vertical output.")
	sh.r.Println("Press Tab to complete databases, tables, columns and keywords.")
	return false
}

func metaStatus(ctx context.Context, sh *Shell, _ string) bool {
	s := sh.session
	db, ok := s.CurrentDatabase()
	if !ok {
		db = "(none)"
	}

	rows := []table.Row{
		{"Session", s.ID.String()},
		{"Dialect", s.Adapter.DialectName()},
	}
	if info, err := s.Adapter.ServerInfo(ctx); err == nil {
		rows = append(rows,
			table.Row{"Server version", info.Version},
			table.Row{"Connection id", info.ConnectionID},
		)
	} else {
		sh.r.Warning(fmt.Sprintf("could not read server info: %v", err))
	}
	rows = append(rows,
		table.Row{"Current database", db},
		table.Row{"Metadata", metadataStatus(s)},
	)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendRows(rows)
	sh.r.Println(t.Render())
	return false
}

func metadataStatus(s *Session) string {
	snap := s.Cache.Snapshot()
	if !snap.Loaded() {
		return "not loaded"
	}
	status := fmt.Sprintf("%d databases, %d tables, %d columns (refreshed %s ago)",
		len(snap.Databases()), snap.TableCount(), snap.ColumnCount(),
		time.Since(snap.LastRefresh()).Truncate(time.Second))
	if s.Cache.IsStale() {
		status += ", stale"
	}
	return status
}

func metaDatabases(ctx context.Context, sh *Shell, _ string) bool {
	if !sh.session.Cache.Snapshot().Loaded() {
		if err := sh.session.Rehash(ctx, true); err != nil {
			sh.r.Error(err.Error())
			return false
		}
	}
	sh.listNames("Database", sh.session.Cache.Databases())
	return false
}

func metaTables(ctx context.Context, sh *Shell, args string) bool {
	db := argument(args)
	if db == "" {
		cur, ok := sh.session.CurrentDatabase()
		if !ok {
			sh.r.Error(ErrNoDatabase.Error())
			return false
		}
		db = cur
	}
	if !sh.session.Cache.Snapshot().Loaded() {
		if err := sh.session.Rehash(ctx, true); err != nil {
			sh.r.Error(err.Error())
			return false
		}
	}
	sh.listNames("Tables_in_"+db, sh.session.Cache.TablesOf(db))
	return false
}

func metaUse(ctx context.Context, sh *Shell, args string) bool {
	if err := sh.session.UseDatabase(ctx, argument(args)); err != nil {
		sh.r.Error(err.Error())
		return false
	}
	sh.r.Println("Database changed")
	return false
}

func metaRehash(ctx context.Context, sh *Shell, _ string) bool {
	if err := sh.session.Rehash(ctx, true); err != nil {
		sh.r.Error(err.Error())
		return false
	}
	snap := sh.session.Cache.Snapshot()
	sh.r.Success(fmt.Sprintf("Metadata refreshed: %d databases, %d tables, %d columns",
		len(snap.Databases()), snap.TableCount(), snap.ColumnCount()))
	return false
}

// metaSuggest shows what tab completion would offer at the end of args.
// Trailing whitespace in args is significant.
func metaSuggest(_ context.Context, sh *Shell, args string) bool {
	engine := sh.session.Engine
	inputCtx, strategy := engine.Explain(args)
	if strategy == "" {
		strategy = "none"
	}
	_, items := engine.Complete(args, len(args))

	if sh.r.Mode() != output.ModeJSON {
		sh.r.Println(sh.r.Muted(fmt.Sprintf("Context: %s (%s)", inputCtx, strategy)))
	}
	if err := sh.r.Suggestions(items); err != nil {
		sh.r.Error(err.Error())
	}
	return false
}

func (sh *Shell) listNames(header string, names []string) {
	set := &output.ResultSet{Columns: []string{header}}
	for _, name := range names {
		set.Rows = append(set.Rows, []any{name})
	}
	if err := sh.r.Result(set, false); err != nil {
		sh.r.Error(err.Error())
		return
	}
	sh.r.RowsFooter(len(names), 0)
}
