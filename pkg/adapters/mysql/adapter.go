// Package mysql provides a MySQL database adapter for sqlsh.
package mysql

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

const (
	defaultHost = "localhost"
	defaultPort = 3306
)

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
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
	return "mysql"
}

// SystemDatabases returns the MySQL system schemas.
func (a *Adapter) SystemDatabases() []string {
	return []string{"information_schema", "mysql", "performance_schema", "sys"}
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildMySQLDSN(cfg)

	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	if err := a.Open(ctx, "mysql", dsn); err != nil {
		return err
	}
	a.Cfg = cfg
	return nil
}

// buildMySQLDSN constructs a go-sql-driver DSN. A "socket" option switches
// to a unix socket; every other option is passed through as a parameter.
func buildMySQLDSN(cfg adapter.Config) string {
	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.DBName = cfg.Database
	c.Timeout = 10 * time.Second

	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(host, strconv.Itoa(port))

	for k, v := range cfg.Options {
		if k == "socket" {
			c.Net = "unix"
			c.Addr = v
			continue
		}
		if c.Params == nil {
			c.Params = make(map[string]string)
		}
		c.Params[k] = v
	}
	return c.FormatDSN()
}

// quoteIdent quotes name with backticks.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ListDatabases implements adapter.Adapter.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	dbs, err := a.QueryStrings(ctx, 0, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	return dbs, nil
}

// ListTables implements adapter.Adapter.
func (a *Adapter) ListTables(ctx context.Context, database string) ([]string, error) {
	tables, err := a.QueryStrings(ctx, 0, "SHOW TABLES FROM "+quoteIdent(database))
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", database, err)
	}
	return tables, nil
}

// ListColumns implements adapter.Adapter.
func (a *Adapter) ListColumns(ctx context.Context, database, table string) ([]string, error) {
	query := fmt.Sprintf("SHOW COLUMNS FROM %s FROM %s", quoteIdent(table), quoteIdent(database))
	cols, err := a.QueryStrings(ctx, 0, query)
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
	return a.QueryString(ctx, "SELECT DATABASE()")
}

// ServerInfo implements adapter.Adapter.
func (a *Adapter) ServerInfo(ctx context.Context) (*adapter.ServerInfo, error) {
	return a.Server(ctx, "SELECT VERSION(), CONNECTION_ID()")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
