// Package postgres provides a PostgreSQL database adapter for sqlsh.
//
// Schemas play the role of databases: USE switches the search_path.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// SystemDatabases returns the PostgreSQL catalog schemas.
func (a *Adapter) SystemDatabases() []string {
	return []string{"information_schema", "pg_catalog", "pg_toast"}
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("invalid postgres connection settings: %w", err)
	}
	if err := a.Attach(ctx, stdlib.OpenDB(*connConfig)); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d", quoteValue(host), port)
	if cfg.Database != "" {
		dsn += " dbname=" + quoteValue(cfg.Database)
	}
	dsn += " sslmode=" + quoteValue(sslmode)

	if cfg.Username != "" {
		dsn += " user=" + quoteValue(cfg.Username)
	}
	if cfg.Password != "" {
		dsn += " password=" + quoteValue(cfg.Password)
	}

	return dsn
}

// quoteValue single-quotes a connection string value when it holds
// whitespace, quotes or backslashes.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n'\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// quoteIdent double-quotes an identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListDatabases returns the schemas of the connected database.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	schemas, err := a.QueryStrings(ctx, 0,
		"SELECT schema_name FROM information_schema.schemata ORDER BY schema_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return schemas, nil
}

// ListTables returns the tables and views of schema.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	tables, err := a.QueryStrings(ctx, 0,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name", schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", schema, err)
	}
	return tables, nil
}

// ListColumns returns the columns of schema.table.
func (a *Adapter) ListColumns(ctx context.Context, schema, table string) ([]string, error) {
	cols, err := a.QueryStrings(ctx, 0, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s.%s: %w", schema, table, err)
	}
	return cols, nil
}

// UseDatabase puts schema first on the search_path.
func (a *Adapter) UseDatabase(ctx context.Context, schema string) error {
	if _, err := a.Exec(ctx, "SET search_path TO "+quoteIdent(schema)); err != nil {
		return err
	}
	a.Cfg.Options = withOption(a.Cfg.Options, "search_path", schema)
	return nil
}

func withOption(opts map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(opts)+1)
	for k, v := range opts {
		out[k] = v
	}
	out[key] = value
	return out
}

// CurrentDatabase returns the first schema on the search_path.
func (a *Adapter) CurrentDatabase(ctx context.Context) (string, error) {
	return a.QueryString(ctx, "SELECT current_schema()")
}

// ServerInfo implements adapter.Adapter.
func (a *Adapter) ServerInfo(ctx context.Context) (*adapter.ServerInfo, error) {
	return a.Server(ctx, "SELECT version(), pg_backend_pid()")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
