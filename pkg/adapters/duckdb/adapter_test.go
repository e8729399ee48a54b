package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				tmpDir := t.TempDir()
				return filepath.Join(tmpDir, "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, adapter.Config{Path: dbPath}))
			defer func() { _ = adp.Close() }()

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, adapter.ErrNotConnected)

	_, err = adp.ListDatabases(ctx)
	assert.ErrorIs(t, err, adapter.ErrNotConnected)

	_, err = adp.ServerInfo(ctx)
	assert.ErrorIs(t, err, adapter.ErrNotConnected)

	assert.NoError(t, adp.Close())
}

func newMemoryAdapter(t *testing.T) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), adapter.Config{Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Metadata(t *testing.T) {
	ctx := context.Background()
	adp := newMemoryAdapter(t)

	_, err := adp.Exec(ctx, "CREATE TABLE users (id INTEGER, name VARCHAR, email VARCHAR)")
	require.NoError(t, err)
	_, err = adp.Exec(ctx, "CREATE TABLE orders (order_id INTEGER, user_id INTEGER)")
	require.NoError(t, err)

	dbs, err := adp.ListDatabases(ctx)
	require.NoError(t, err)
	assert.Contains(t, dbs, "memory")

	tables, err := adp.ListTables(ctx, "memory")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)

	cols, err := adp.ListColumns(ctx, "memory", "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "email"}, cols)

	cur, err := adp.CurrentDatabase(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", cur)
}

func TestAdapter_ExecReportsAffectedRows(t *testing.T) {
	ctx := context.Background()
	adp := newMemoryAdapter(t)

	_, err := adp.Exec(ctx, "CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)
	n, err := adp.Exec(ctx, "INSERT INTO t VALUES (1), (2), (3)")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := adp.Query(ctx, "SELECT count(*) FROM t")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var count int
	require.NoError(t, rows.Scan(&count))
	assert.Equal(t, 3, count)
}

func TestAdapter_ServerInfo(t *testing.T) {
	adp := newMemoryAdapter(t)

	info, err := adp.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, info.Version)
	assert.Zero(t, info.ConnectionID)
}

func TestConnect_WithSettings(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	cfg := adapter.Config{
		Path: ":memory:",
		Params: map[string]any{
			"settings": map[string]any{
				"threads": "2",
			},
		},
	}

	err := adp.Connect(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = adp.Close() }()

	// Verify setting was applied
	rows, err := adp.Query(ctx, "SELECT current_setting('threads')")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())

	var threadsSetting string
	require.NoError(t, rows.Scan(&threadsSetting))
	assert.Equal(t, "2", threadsSetting)
}

func TestConnect_WithInvalidParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), adapter.Config{
		Path:   ":memory:",
		Params: map[string]any{"nope": true},
	})
	require.Error(t, err)
	assert.False(t, adp.IsConnected())
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("duckdb"))
	adp, err := adapter.NewAdapter(adapter.Config{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", adp.DialectName())
	assert.Equal(t, []string{"system", "temp"}, adp.SystemDatabases())
}
