package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsh/internal/cli/testutil"

	_ "github.com/leapstack-labs/sqlsh/pkg/adapters/postgres"
)

// useSQLiteConfig points the SQLSH_* environment at a seeded database file.
func useSQLiteConfig(t *testing.T) {
	t.Helper()
	testutil.IsolateConfig(t)
	path := testutil.SeedSQLite(t,
		"CREATE TABLE users (id INTEGER, name TEXT, email TEXT)",
		"CREATE TABLE orders (order_id INTEGER, user_id INTEGER)",
		"INSERT INTO users VALUES (1, 'alice', 'a@example.com')",
	)
	t.Setenv("SQLSH_TYPE", "sqlite")
	t.Setenv("SQLSH_PATH", path)
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func shellCommand(statements string) *cobra.Command {
	return &cobra.Command{
		Use: "sqlsh",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunShell(cmd, statements)
		},
	}
}

func TestRunShell_Execute(t *testing.T) {
	useSQLiteConfig(t)

	out, _, err := execute(t, shellCommand("SELECT name FROM users; SELECT COUNT(*) AS total FROM orders"), "")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "total")
	assert.NotContains(t, out, "in set")
}

func TestRunShell_Stdin(t *testing.T) {
	useSQLiteConfig(t)

	out, _, err := execute(t, shellCommand(""), "SELECT email FROM users WHERE id = 1;\n")
	require.NoError(t, err)
	assert.Contains(t, out, "a@example.com")
}

func TestRunShell_StopsOnError(t *testing.T) {
	useSQLiteConfig(t)

	_, _, err := execute(t, shellCommand("SELECT * FROM nope"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestRunShell_ConnectError(t *testing.T) {
	testutil.IsolateConfig(t)
	t.Setenv("SQLSH_TYPE", "oracle")

	_, _, err := execute(t, shellCommand("SELECT 1"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestNewCompleteCommand(t *testing.T) {
	cmd := NewCompleteCommand()

	assert.Equal(t, "complete <sql>", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
	assert.NotNil(t, cmd.Flags().Lookup("cursor"))
}

func TestCompleteCommand(t *testing.T) {
	t.Run("tables", func(t *testing.T) {
		useSQLiteConfig(t)
		out, errOut, err := execute(t, NewCompleteCommand(), "", "SELECT * FROM ")
		require.NoError(t, err)
		assert.Contains(t, out, "users")
		assert.Contains(t, out, "orders")
		assert.Contains(t, errOut, "FromClause")
	})

	t.Run("cursor in the middle", func(t *testing.T) {
		useSQLiteConfig(t)
		out, _, err := execute(t, NewCompleteCommand(), "", "--cursor", "16", "SELECT * FROM us WHERE x = 1")
		require.NoError(t, err)
		assert.Contains(t, out, "users")
	})

	t.Run("json", func(t *testing.T) {
		useSQLiteConfig(t)
		t.Setenv("SQLSH_FORMAT", "json")
		out, _, err := execute(t, NewCompleteCommand(), "", "SELECT * FROM users WHERE em")
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.NotEmpty(t, got)
		categories := make(map[string]any)
		for _, s := range got {
			categories[s["text"].(string)] = s["category"]
		}
		assert.Equal(t, "column", categories["email"])
	})

	t.Run("requires an argument", func(t *testing.T) {
		useSQLiteConfig(t)
		_, _, err := execute(t, NewCompleteCommand(), "")
		require.Error(t, err)
	})
}

func TestConfigCommand(t *testing.T) {
	testutil.IsolateConfig(t)
	t.Setenv("SQLSH_TYPE", "postgres")
	t.Setenv("SQLSH_USER", "app")
	t.Setenv("SQLSH_PASSWORD", "s3cret")

	out, _, err := execute(t, NewConfigCommand(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "# no config file found")
	assert.Contains(t, out, "type: postgres")
	assert.Contains(t, out, "port: 5432")
	assert.Contains(t, out, "user: app")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "s3cret")
}
