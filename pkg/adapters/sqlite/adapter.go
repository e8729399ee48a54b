// Package sqlite provides a SQLite database adapter for sqlsh, backed by
// the pure Go modernc.org/sqlite driver.
//
// The main database and every ATTACHed database count as databases. SQLite
// has no USE statement, so UseDatabase only changes which schema the
// session treats as current.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"

	_ "modernc.org/sqlite" // sqlite driver
)

const mainSchema = "main"

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
	current string
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
		current:        mainSchema,
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// SystemDatabases returns the temp schema, which holds no user tables worth
// completing.
func (a *Adapter) SystemDatabases() []string {
	return []string{"temp"}
}

// Connect opens the database file at cfg.Path, or an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("opening sqlite", slog.String("path", path))
	if err := a.Open(ctx, "sqlite", path); err != nil {
		return err
	}
	a.Cfg = cfg
	a.current = mainSchema
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListDatabases returns the schema names from PRAGMA database_list.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	dbs, err := a.QueryStrings(ctx, 1, "PRAGMA database_list")
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return dbs, nil
}

// ListTables implements adapter.Adapter.
func (a *Adapter) ListTables(ctx context.Context, database string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT name FROM %s.sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%%' ORDER BY name",
		quoteIdent(database))
	tables, err := a.QueryStrings(ctx, 0, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", database, err)
	}
	return tables, nil
}

// ListColumns implements adapter.Adapter.
func (a *Adapter) ListColumns(ctx context.Context, database, table string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA %s.table_info(%s)", quoteIdent(database), quoteIdent(table))
	cols, err := a.QueryStrings(ctx, 1, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s.%s: %w", database, table, err)
	}
	return cols, nil
}

// UseDatabase switches the current schema after checking it is attached.
func (a *Adapter) UseDatabase(ctx context.Context, database string) error {
	dbs, err := a.ListDatabases(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(dbs, func(name string) bool { return strings.EqualFold(name, database) }) {
		return fmt.Errorf("unknown database %q", database)
	}
	a.current = database
	return nil
}

// CurrentDatabase implements adapter.Adapter.
func (a *Adapter) CurrentDatabase(_ context.Context) (string, error) {
	if a.DB == nil {
		return "", adapter.ErrNotConnected
	}
	return a.current, nil
}

// ServerInfo reports the SQLite library version.
func (a *Adapter) ServerInfo(ctx context.Context) (*adapter.ServerInfo, error) {
	return a.Server(ctx, "SELECT sqlite_version(), NULL")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
