package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/sqlsh/internal/cli/config"
	"github.com/leapstack-labs/sqlsh/internal/cli/output"
	"github.com/leapstack-labs/sqlsh/internal/completion"
	"github.com/leapstack-labs/sqlsh/internal/metadata"
	"github.com/leapstack-labs/sqlsh/internal/sqlparse"
	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

// ErrNoDatabase is returned by commands that need a current database.
var ErrNoDatabase = errors.New("no database selected")

// Statements whose first word marks them as returning rows.
var rowStatements = map[string]struct{}{
	"SELECT": {}, "SHOW": {}, "DESCRIBE": {}, "DESC": {}, "EXPLAIN": {},
	"WITH": {}, "PRAGMA": {}, "VALUES": {}, "TABLE": {}, "CALL": {}, "FROM": {},
}

// Statements that change the schema and therefore invalidate the cache.
var schemaStatements = map[string]struct{}{
	"CREATE": {}, "DROP": {}, "ALTER": {}, "RENAME": {}, "TRUNCATE": {}, "ATTACH": {}, "DETACH": {},
}

// Session is one connection plus the completion state built on it.
type Session struct {
	ID        uuid.UUID
	Adapter   adapter.Adapter
	Cache     *metadata.Cache
	Refresher *metadata.Refresher
	Engine    *completion.Engine

	current    *completion.CurrentDatabase
	autoRehash bool
	logger     *slog.Logger
}

// Result is the outcome of one statement.
type Result struct {
	// Set is nil for statements that do not return rows.
	Set      *output.ResultSet
	Affected int64
	Elapsed  time.Duration
	// Database is set when the statement switched databases.
	Database string
}

// OpenSession connects an adapter for cfg and builds a session on it.
func OpenSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	a, err := adapter.NewAdapter(cfg.AdapterConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg.AdapterConfig()); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}
	return NewSession(ctx, a, cfg, logger), nil
}

// NewSession wraps a connected adapter.
func NewSession(ctx context.Context, a adapter.Adapter, cfg *config.Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.New()
	logger = logger.With(slog.String("session", id.String()))

	system := slices.Concat(a.SystemDatabases(), cfg.SystemDatabases)
	cache := metadata.NewCache(
		metadata.WithTTL(cfg.MetadataTTL),
		metadata.WithSystemDatabases(system...),
		metadata.WithLogger(logger),
	)
	current := &completion.CurrentDatabase{}
	if db, err := a.CurrentDatabase(ctx); err == nil {
		current.Set(db)
	} else {
		logger.Debug("could not read current database", slog.String("error", err.Error()))
	}

	return &Session{
		ID:         id,
		Adapter:    a,
		Cache:      cache,
		Refresher:  metadata.NewRefresher(cache, a, logger),
		Engine:     completion.NewEngine(cache, current, logger),
		current:    current,
		autoRehash: cfg.AutoRehash,
		logger:     logger,
	}
}

// Close closes the connection.
func (s *Session) Close() error {
	return s.Adapter.Close()
}

// CurrentDatabase returns the session's database, if any.
func (s *Session) CurrentDatabase() (string, bool) {
	return s.current.Get()
}

// Rehash refreshes the metadata cache. With wait false the refresh runs
// in the background.
func (s *Session) Rehash(ctx context.Context, wait bool) error {
	if !wait {
		s.Refresher.Trigger(ctx)
		return nil
	}
	return s.Refresher.RefreshNow(ctx)
}

// MaybeRehash starts a background refresh when auto-rehash is on and the
// cache is stale. It never waits: a refresh holding the cache lock is
// already doing the work.
func (s *Session) MaybeRehash(ctx context.Context) {
	if !s.autoRehash {
		return
	}
	if stale, ok := s.Cache.TryIsStale(); ok && stale {
		s.Refresher.Trigger(ctx)
	}
}

// UseDatabase switches the session database.
func (s *Session) UseDatabase(ctx context.Context, name string) error {
	name = unquoteIdent(name)
	if name == "" {
		return fmt.Errorf("database name is required")
	}
	if err := s.Adapter.UseDatabase(ctx, name); err != nil {
		return err
	}
	s.current.Set(name)
	s.logger.Info("database changed", slog.String("database", name))
	if s.autoRehash {
		s.Refresher.Reload(ctx)
	}
	return nil
}

// Execute runs one statement. USE is routed through UseDatabase so the
// prompt and completion follow the switch.
func (s *Session) Execute(ctx context.Context, stmt string) (*Result, error) {
	stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	if stmt == "" {
		return nil, fmt.Errorf("empty statement")
	}
	start := time.Now()
	first := sqlparse.FirstWord(stmt)

	if first == "USE" {
		if err := s.UseDatabase(ctx, useTarget(stmt)); err != nil {
			return nil, err
		}
		db, _ := s.current.Get()
		return &Result{Elapsed: time.Since(start), Database: db}, nil
	}

	if _, ok := rowStatements[first]; ok {
		rows, err := s.Adapter.Query(ctx, stmt)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()
		set, err := readRows(rows)
		if err != nil {
			return nil, err
		}
		return &Result{Set: set, Elapsed: time.Since(start)}, nil
	}

	affected, err := s.Adapter.Exec(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if _, ok := schemaStatements[first]; ok && s.autoRehash {
		s.logger.Debug("schema changed, reloading metadata", slog.String("statement", first))
		s.Refresher.Reload(ctx)
	}
	return &Result{Affected: affected, Elapsed: time.Since(start)}, nil
}

// readRows reads every row into memory.
func readRows(rows *adapter.Rows) (*output.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	set := &output.ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// Most drivers return text columns as []byte.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// useTarget returns the database named by a USE statement.
func useTarget(stmt string) string {
	toks := sqlparse.Tokenize(stmt)
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].Upper() != "USE" {
			continue
		}
		if next := toks[i+1]; next.Type == sqlparse.TokenIdent || next.Type == sqlparse.TokenString {
			return next.Literal
		}
		return ""
	}
	return ""
}

// unquoteIdent strips one layer of backticks or double quotes.
func unquoteIdent(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 {
		first, last := name[0], name[len(name)-1]
		if (first == '`' || first == '"') && first == last {
			return name[1 : len(name)-1]
		}
	}
	return name
}
