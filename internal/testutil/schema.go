package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
)

// SchemaSource is an in-memory metadata source for tests.
type SchemaSource struct {
	Databases []string
	Tables    map[string][]string // database -> tables
	Columns   map[string][]string // "database.table" -> columns

	DatabasesErr error
	TableErrs    map[string]error // database -> error
	ColumnErrs   map[string]error // "database.table" -> error

	// Entered, if set, receives a value when ListDatabases starts.
	Entered chan struct{}
	// Release, if set, blocks ListDatabases until it is closed.
	Release chan struct{}

	calls atomic.Int32
}

// NewSchemaSource returns the schema used throughout the completion tests:
// test_db with users and orders, sales with customers, and the mysql
// system database.
func NewSchemaSource() *SchemaSource {
	return &SchemaSource{
		Databases: []string{"test_db", "sales", "mysql"},
		Tables: map[string][]string{
			"test_db": {"users", "orders"},
			"sales":   {"customers"},
			"mysql":   {"user"},
		},
		Columns: map[string][]string{
			"test_db.users":   {"id", "name", "email"},
			"test_db.orders":  {"order_id", "user_id", "amount"},
			"sales.customers": {"customer_id", "name", "region"},
			"mysql.user":      {"Host", "User"},
		},
	}
}

// Calls returns how many times ListDatabases ran.
func (s *SchemaSource) Calls() int {
	return int(s.calls.Load())
}

// ListDatabases implements metadata.Source.
func (s *SchemaSource) ListDatabases(ctx context.Context) ([]string, error) {
	s.calls.Add(1)
	if s.Entered != nil {
		s.Entered <- struct{}{}
	}
	if s.Release != nil {
		select {
		case <-s.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.DatabasesErr != nil {
		return nil, s.DatabasesErr
	}
	return s.Databases, nil
}

// ListTables implements metadata.Source.
func (s *SchemaSource) ListTables(_ context.Context, database string) ([]string, error) {
	if err := s.TableErrs[database]; err != nil {
		return nil, err
	}
	tables, ok := s.Tables[database]
	if !ok {
		return nil, fmt.Errorf("unknown database %q", database)
	}
	return tables, nil
}

// ListColumns implements metadata.Source.
func (s *SchemaSource) ListColumns(_ context.Context, database, table string) ([]string, error) {
	key := database + "." + table
	if err := s.ColumnErrs[key]; err != nil {
		return nil, err
	}
	cols, ok := s.Columns[key]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", key)
	}
	return cols, nil
}
