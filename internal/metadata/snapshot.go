package metadata

import (
	"slices"
	"strings"
	"time"
)

// Snapshot is an immutable view of schema names. A refresh replaces the
// cache's snapshot wholesale, so a snapshot never changes once published.
type Snapshot struct {
	databases   []string
	tables      map[string][]string // lower(db) -> tables
	columns     map[string][]string // lower(db.table) -> columns
	lastRefresh time.Time
	loaded      bool
}

// ColumnKey returns the key columns are stored under: "db.table" lower-cased.
func ColumnKey(database, table string) string {
	return strings.ToLower(database + "." + table)
}

// Loaded reports whether a refresh has completed.
func (s *Snapshot) Loaded() bool {
	return s.loaded
}

// LastRefresh returns the time of the last successful refresh.
func (s *Snapshot) LastRefresh() time.Time {
	return s.lastRefresh
}

// Databases returns every database name, system databases included, in
// server order.
func (s *Snapshot) Databases() []string {
	return s.databases
}

// Tables returns the tables of database, matched case-insensitively.
func (s *Snapshot) Tables(database string) []string {
	return s.tables[strings.ToLower(database)]
}

// Columns returns the columns of database.table, matched case-insensitively.
func (s *Snapshot) Columns(database, table string) []string {
	return s.columns[ColumnKey(database, table)]
}

// HasColumns reports whether columns were loaded for database.table.
func (s *Snapshot) HasColumns(database, table string) bool {
	_, ok := s.columns[ColumnKey(database, table)]
	return ok
}

// HasDatabase reports whether database is known, ignoring case.
func (s *Snapshot) HasDatabase(database string) bool {
	return slices.ContainsFunc(s.databases, func(name string) bool {
		return strings.EqualFold(name, database)
	})
}

// DatabasesWithTable returns the databases that contain table, in database
// order.
func (s *Snapshot) DatabasesWithTable(table string) []string {
	var out []string
	for _, db := range s.databases {
		if slices.ContainsFunc(s.Tables(db), func(name string) bool {
			return strings.EqualFold(name, table)
		}) {
			out = append(out, db)
		}
	}
	return out
}

// TableCount returns the number of tables across all databases.
func (s *Snapshot) TableCount() int {
	n := 0
	for _, tables := range s.tables {
		n += len(tables)
	}
	return n
}

// ColumnCount returns the number of columns across all tables.
func (s *Snapshot) ColumnCount() int {
	n := 0
	for _, cols := range s.columns {
		n += len(cols)
	}
	return n
}
