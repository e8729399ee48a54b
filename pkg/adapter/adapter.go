// Package adapter defines the database adapter contract used by the shell.
//
// An adapter owns one connection to a server, runs statements for the
// session, and answers the schema questions the metadata cache asks.
// Concrete implementations live in pkg/adapters/ subdirectories and
// register themselves on import.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds configuration for connecting to a database.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	// Options are driver parameters appended to the DSN.
	Options map[string]string
	// Params holds adapter-specific settings such as DuckDB extensions.
	Params map[string]any
}

// Rows wraps sql.Rows returned by Query.
type Rows struct {
	*sql.Rows
}

// ServerInfo describes the server behind a connection.
type ServerInfo struct {
	Version      string
	ConnectionID int64
}

// Adapter defines the interface that all database adapters must implement.
// The List methods satisfy metadata.Source.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows and reports the
	// number of rows affected.
	Exec(ctx context.Context, sql string) (int64, error)

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// ListDatabases returns every database (or schema) visible to the session.
	ListDatabases(ctx context.Context) ([]string, error)

	// ListTables returns the tables and views of database.
	ListTables(ctx context.Context, database string) ([]string, error)

	// ListColumns returns the columns of database.table in ordinal order.
	ListColumns(ctx context.Context, database, table string) ([]string, error)

	// UseDatabase makes database the session default.
	UseDatabase(ctx context.Context, database string) error

	// CurrentDatabase returns the session default database, or "" if none.
	CurrentDatabase(ctx context.Context) (string, error)

	// ServerInfo reports the server version and connection id.
	ServerInfo(ctx context.Context) (*ServerInfo, error)

	// DialectName returns the SQL dialect name, e.g. "mysql".
	DialectName() string

	// SystemDatabases lists databases never introspected for completion.
	SystemDatabases() []string
}
