// Package metadata caches database, table and column names for completion.
//
// The cache holds one Snapshot guarded by a mutex. Refresh takes the lock
// for the whole enumeration; the completion hot path reads through TryView
// and the shell loop checks staleness through TryIsStale, neither of which
// waits for the lock.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL is how long a loaded snapshot stays fresh.
const DefaultTTL = 300 * time.Second

// DefaultSystemDatabases are never introspected for tables or columns.
var DefaultSystemDatabases = []string{"information_schema", "mysql", "performance_schema", "sys"}

// Source answers the three questions a refresh needs.
type Source interface {
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, database string) ([]string, error)
	ListColumns(ctx context.Context, database, table string) ([]string, error)
}

// Cache is a process-wide snapshot of schema names with TTL staleness.
type Cache struct {
	mu   sync.Mutex
	snap *Snapshot
	// generation counts invalidations; loadedGen is the generation the
	// current snapshot was enumerated at.
	generation atomic.Uint64
	loadedGen  uint64

	ttl    time.Duration
	system map[string]struct{}
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the staleness interval. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSystemDatabases adds names to the system database denylist.
func WithSystemDatabases(names ...string) Option {
	return func(c *Cache) {
		for _, name := range names {
			c.system[strings.ToLower(name)] = struct{}{}
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates an empty, not-yet-loaded cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		snap:   &Snapshot{},
		ttl:    DefaultTTL,
		system: make(map[string]struct{}),
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, name := range DefaultSystemDatabases {
		c.system[name] = struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the staleness interval.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// IsSystemDatabase reports whether name is on the denylist.
func (c *Cache) IsSystemDatabase(name string) bool {
	_, ok := c.system[strings.ToLower(name)]
	return ok
}

func (c *Cache) staleLocked() bool {
	if !c.snap.loaded || c.loadedGen != c.generation.Load() {
		return true
	}
	return c.now().Sub(c.snap.lastRefresh) > c.ttl
}

// IsStale reports whether the next Refresh would hit the source.
func (c *Cache) IsStale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staleLocked()
}

// TryIsStale is IsStale without waiting. ok is false when the lock is held,
// which means a refresh is in progress.
func (c *Cache) TryIsStale() (stale, ok bool) {
	if !c.mu.TryLock() {
		return false, false
	}
	defer c.mu.Unlock()
	return c.staleLocked(), true
}

// Invalidate marks the snapshot stale without discarding it. The current
// names stay visible until the next successful refresh. It never blocks;
// an invalidation that lands during a refresh leaves the result stale.
func (c *Cache) Invalidate() {
	c.generation.Add(1)
}

// Refresh reloads the snapshot from src when it is stale and is a no-op
// otherwise. Failures listing tables or columns of a single database or
// table are logged and skipped; failing to list databases aborts the
// refresh and leaves the previous snapshot in place.
func (c *Cache) Refresh(ctx context.Context, src Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.staleLocked() {
		return nil
	}

	start := c.now()
	gen := c.generation.Load()
	databases, err := src.ListDatabases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}

	tables := make(map[string][]string)
	columns := make(map[string][]string)
	for _, db := range databases {
		if c.IsSystemDatabase(db) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("metadata refresh interrupted: %w", err)
		}

		names, err := src.ListTables(ctx, db)
		if err != nil {
			c.logger.Warn("skipping database", slog.String("database", db), slog.String("error", err.Error()))
			continue
		}
		tables[strings.ToLower(db)] = names

		for _, table := range names {
			cols, err := src.ListColumns(ctx, db, table)
			if err != nil {
				c.logger.Warn("skipping table",
					slog.String("database", db),
					slog.String("table", table),
					slog.String("error", err.Error()))
				continue
			}
			columns[ColumnKey(db, table)] = cols
		}
	}

	c.snap = &Snapshot{
		databases:   databases,
		tables:      tables,
		columns:     columns,
		lastRefresh: c.now(),
		loaded:      true,
	}
	c.loadedGen = gen

	c.logger.Debug("metadata refreshed",
		slog.Int("databases", len(databases)),
		slog.Int("tables", c.snap.TableCount()),
		slog.Int("columns", c.snap.ColumnCount()),
		slog.Duration("took", c.now().Sub(start)))
	return nil
}

// TryView calls fn with the current snapshot if the lock is free and
// reports whether it did. It never blocks.
func (c *Cache) TryView(fn func(*Snapshot)) bool {
	if !c.mu.TryLock() {
		return false
	}
	defer c.mu.Unlock()
	fn(c.snap)
	return true
}

// Snapshot returns the current snapshot, waiting for any refresh in
// progress.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Databases returns all database names.
func (c *Cache) Databases() []string {
	return slices.Clone(c.Snapshot().Databases())
}

// TablesOf returns the tables of database.
func (c *Cache) TablesOf(database string) []string {
	return slices.Clone(c.Snapshot().Tables(database))
}

// ColumnsOf returns the columns of database.table.
func (c *Cache) ColumnsOf(database, table string) []string {
	return slices.Clone(c.Snapshot().Columns(database, table))
}
