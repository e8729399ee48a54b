// Package duckdb provides a DuckDB database adapter for sqlsh.
//
// Attached catalogs play the role of databases.
package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// SystemDatabases returns DuckDB's internal catalogs.
func (a *Adapter) SystemDatabases() []string {
	return []string{"system", "temp"}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	a.Logger.Debug("opening duckdb", slog.String("path", path))
	if err := a.Open(ctx, "duckdb", path); err != nil {
		return err
	}
	a.Cfg = cfg

	if err := a.applyParams(ctx, params); err != nil {
		_ = a.Close()
		return err
	}
	return nil
}

func (a *Adapter) applyParams(ctx context.Context, params *Params) error {
	for _, ext := range params.Extensions {
		a.Logger.Debug("loading extension", slog.String("extension", ext))
		if _, err := a.Exec(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	// Sorted for a stable statement order.
	keys := make([]string, 0, len(params.Settings))
	for k := range params.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stmt := fmt.Sprintf("SET %s = '%s'", k, strings.ReplaceAll(params.Settings[k], "'", "''"))
		if _, err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListDatabases returns the attached catalogs.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	dbs, err := a.QueryStrings(ctx, 0, "SELECT database_name FROM duckdb_databases() ORDER BY database_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return dbs, nil
}

// ListTables returns the tables and views of catalog database, across schemas.
func (a *Adapter) ListTables(ctx context.Context, database string) ([]string, error) {
	tables, err := a.QueryStrings(ctx, 0,
		"SELECT DISTINCT table_name FROM information_schema.tables WHERE table_catalog = ? ORDER BY table_name", database)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", database, err)
	}
	return tables, nil
}

// ListColumns implements adapter.Adapter.
func (a *Adapter) ListColumns(ctx context.Context, database, table string) ([]string, error) {
	cols, err := a.QueryStrings(ctx, 0, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_catalog = ? AND table_name = ?
		ORDER BY ordinal_position`, database, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s.%s: %w", database, table, err)
	}
	return cols, nil
}

// UseDatabase implements adapter.Adapter.
func (a *Adapter) UseDatabase(ctx context.Context, database string) error {
	if _, err := a.Exec(ctx, "USE "+quoteIdent(database)); err != nil {
		return err
	}
	a.Cfg.Database = database
	return nil
}

// CurrentDatabase implements adapter.Adapter.
func (a *Adapter) CurrentDatabase(ctx context.Context) (string, error) {
	return a.QueryString(ctx, "SELECT current_database()")
}

// ServerInfo reports the DuckDB library version. DuckDB has no connection ids.
func (a *Adapter) ServerInfo(ctx context.Context) (*adapter.ServerInfo, error) {
	return a.Server(ctx, "SELECT version(), CAST(NULL AS BIGINT)")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
