package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		expected string
	}{
		{
			name: "basic connection",
			config: adapter.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: adapter.Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: adapter.Config{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name:     "no database",
			config:   adapter.Config{Username: "postgres"},
			expected: "host=localhost port=5432 sslmode=disable user=postgres",
		},
		{
			name: "password with spaces",
			config: adapter.Config{
				Database: "mydb",
				Username: "app",
				Password: "pass word",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable user=app password='pass word'",
		},
		{
			name: "custom port",
			config: adapter.Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Username: "analyst",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildPostgresDSN(tt.config)
			assert.Equal(t, tt.expected, dsn)
		})
	}
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, "plain", quoteValue("plain"))
	assert.Equal(t, "''", quoteValue(""))
	assert.Equal(t, `'two words'`, quoteValue("two words"))
	assert.Equal(t, `'it\'s'`, quoteValue("it's"))

	assert.Equal(t, `"public"`, quoteIdent("public"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestNew(t *testing.T) {
	adp := New(nil)

	assert.NotNil(t, adp, "New() should return non-nil adapter")
	assert.Nil(t, adp.DB, "DB should be nil before Connect")
	assert.False(t, adp.IsConnected(), "should not be connected initially")
	assert.Equal(t, "postgres", adp.DialectName(), "dialect name should be postgres")

	// Verify interface compliance
	var _ adapter.Adapter = (*Adapter)(nil)
	var _ adapter.Adapter = adp
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
		errMsg    string
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Exec(ctx, "SELECT 1")
				return err
			},
			errMsg: "not established",
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1")
				return err
			},
			errMsg: "not established",
		},
		{
			name: "list schemas without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.ListDatabases(ctx)
				return err
			},
			errMsg: "not established",
		},
		{
			name: "use without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.UseDatabase(ctx, "public")
			},
			errMsg: "not established",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			err := tt.operation(ctx, adp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"), "postgres adapter should be registered")

	factory, ok := adapter.Get("postgres")
	require.True(t, ok, "should be able to get postgres factory")

	adp := factory(nil)
	assert.NotNil(t, adp)

	pg, ok := adp.(*Adapter)
	assert.True(t, ok, "factory should return *Adapter")
	assert.NotNil(t, pg)
	assert.Equal(t, "postgres", pg.DialectName())
}

func TestAdapter_Close(t *testing.T) {
	// Close should not error even without connection
	adp := New(nil)
	assert.NoError(t, adp.Close())
}

func TestAdapter_Metadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	adp := New(nil)
	adp.DB = db
	ctx := context.Background()

	mock.ExpectQuery("SELECT schema_name FROM information_schema.schemata").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}).AddRow("pg_catalog").AddRow("public"))
	schemas, err := adp.ListDatabases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pg_catalog", "public"}, schemas)

	mock.ExpectQuery("SELECT table_name FROM information_schema.tables").
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("orders").AddRow("users"))
	tables, err := adp.ListTables(ctx, "public")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)

	mock.ExpectQuery("SELECT column_name").
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id").AddRow("email"))
	cols, err := adp.ListColumns(ctx, "public", "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "email"}, cols)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_UseDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	adp := New(nil)
	adp.DB = db
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`SET search_path TO "sales"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, adp.UseDatabase(ctx, "sales"))
	assert.Equal(t, "sales", adp.Cfg.Options["search_path"])

	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_schema()")).
		WillReturnRows(sqlmock.NewRows([]string{"current_schema"}).AddRow("sales"))
	cur, err := adp.CurrentDatabase(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sales", cur)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT version(), pg_backend_pid()")).
		WillReturnRows(sqlmock.NewRows([]string{"version", "pg_backend_pid"}).AddRow("PostgreSQL 16.2", 4242))
	info, err := adp.ServerInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL 16.2", info.Version)
	assert.Equal(t, int64(4242), info.ConnectionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_SystemDatabases(t *testing.T) {
	assert.ElementsMatch(t, []string{"information_schema", "pg_catalog", "pg_toast"}, New(nil).SystemDatabases())
}
