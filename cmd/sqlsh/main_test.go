// Package main provides end-to-end tests for the sqlsh CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlsh/internal/cli"
	"github.com/leapstack-labs/sqlsh/internal/cli/config"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..", "testdata")
}

// run executes the root command with stdin and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seededDatabase loads testdata/shop.sql into a new SQLite file.
func seededDatabase(t *testing.T) (cfgFile, dbPath string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	td := testdataDir(t)
	cfgFile = filepath.Join(td, "sqlsh.yaml")
	dbPath = filepath.Join(t.TempDir(), "shop.db")

	script, err := os.ReadFile(filepath.Join(td, "shop.sql"))
	if err != nil {
		t.Fatalf("failed to read shop.sql: %v", err)
	}
	if _, err := run(t, string(script), "--config", cfgFile, "--profile", "local", "--path", dbPath); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
	return cfgFile, dbPath
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "", "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "sqlsh") {
		t.Errorf("version output should contain 'sqlsh', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "", "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}
	for _, expected := range []string{"complete", "config", "completion", "version", "--execute"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestBatchQuery(t *testing.T) {
	cfgFile, dbPath := seededDatabase(t)

	output, err := run(t, "",
		"--config", cfgFile, "--profile", "local", "--path", dbPath,
		"-f", "csv",
		"-e", "SELECT c.name, SUM(o.amount) AS total FROM customers c JOIN orders o ON o.customer_id = c.customer_id GROUP BY c.name ORDER BY c.name")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	for _, expected := range []string{"name,total", "Alice,37.5", "Bob,99.9"} {
		if !strings.Contains(output, expected) {
			t.Errorf("output should contain %q, got: %s", expected, output)
		}
	}
}

func TestCompleteTables(t *testing.T) {
	cfgFile, dbPath := seededDatabase(t)

	output, err := run(t, "", "--config", cfgFile, "--profile", "local", "--path", dbPath,
		"complete", "SELECT * FROM ")
	if err != nil {
		t.Fatalf("complete error = %v", err)
	}
	for _, expected := range []string{"customers", "orders"} {
		if !strings.Contains(output, expected) {
			t.Errorf("completion should offer %q, got: %s", expected, output)
		}
	}
}

func TestCompleteColumns(t *testing.T) {
	cfgFile, dbPath := seededDatabase(t)

	output, err := run(t, "", "--config", cfgFile, "--profile", "local", "--path", dbPath,
		"complete", "SELECT * FROM orders WHERE cr")
	if err != nil {
		t.Fatalf("complete error = %v", err)
	}
	if !strings.Contains(output, "created_at") {
		t.Errorf("completion should offer created_at, got: %s", output)
	}
}

func TestConfigCommandMasksProfilePasswords(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WAREHOUSE_PASSWORD", "hunter2")
	cfgFile := filepath.Join(testdataDir(t), "sqlsh.yaml")

	output, err := run(t, "", "--config", cfgFile, "--profile", "warehouse", "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(output, "type: postgres") {
		t.Errorf("profile should switch the type, got: %s", output)
	}
	if strings.Contains(output, "hunter2") {
		t.Errorf("password leaked: %s", output)
	}
}
