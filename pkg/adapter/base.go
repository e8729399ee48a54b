package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotConnected is returned by operations on an adapter without a connection.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec and Query implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Open opens and pings a pool limited to a single connection, so session
// state such as the default database survives between statements.
func (b *BaseSQLAdapter) Open(ctx context.Context, driverName, dsn string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}
	return b.Attach(ctx, db)
}

// Attach adopts an already opened pool.
func (b *BaseSQLAdapter) Attach(ctx context.Context, db *sql.DB) error {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	b.DB = db
	return nil
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) (int64, error) {
	if b.DB == nil {
		return 0, ErrNotConnected
	}
	res, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return 0, fmt.Errorf("failed to execute SQL: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil //nolint:nilerr // not every driver reports affected rows
	}
	return n, nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// QueryStrings runs query and returns column index of every row as a
// string. NULLs are skipped.
func (b *BaseSQLAdapter) QueryStrings(ctx context.Context, index int, query string, args ...any) ([]string, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(cols) {
		return nil, fmt.Errorf("column %d out of range, query returned %d columns", index, len(cols))
	}

	dest := make([]any, len(cols))
	values := make([]sql.NullString, len(cols))
	for i := range dest {
		dest[i] = &values[i]
	}

	var out []string
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if values[index].Valid {
			out = append(out, values[index].String)
		}
	}
	return out, rows.Err()
}

// QueryString runs a query returning a single value. A NULL or missing
// row yields "".
func (b *BaseSQLAdapter) QueryString(ctx context.Context, query string, args ...any) (string, error) {
	values, err := b.QueryStrings(ctx, 0, query, args...)
	if err != nil || len(values) == 0 {
		return "", err
	}
	return values[0], nil
}

// Server runs query, which must return the version and connection id.
func (b *BaseSQLAdapter) Server(ctx context.Context, query string) (*ServerInfo, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	var (
		info ServerInfo
		id   sql.NullInt64
	)
	if err := b.DB.QueryRowContext(ctx, query).Scan(&info.Version, &id); err != nil {
		return nil, fmt.Errorf("failed to query server info: %w", err)
	}
	info.ConnectionID = id.Int64
	return &info, nil
}
