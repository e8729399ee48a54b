package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqlsh/internal/cli/config"
	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")
	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "connection", "shell"
}

// getConfigSchema returns the configuration keys accepted by sqlsh.yaml.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "type", Type: "string", Default: config.DefaultType, Description: "Database type: " + strings.Join(adapter.ListAdapters(), ", "), Category: "connection"},
		{Name: "host", Type: "string", Default: config.DefaultHost, Description: "Server host", Category: "connection"},
		{Name: "port", Type: "int", Default: fmt.Sprintf("%d / %d", config.DefaultPort("mysql"), config.DefaultPort("postgres")), Description: "Server port; defaults by type", Category: "connection"},
		{Name: "user", Type: "string", Description: "User name", Category: "connection"},
		{Name: "password", Type: "string", Description: "Password; `${VAR}` references are expanded", Category: "connection"},
		{Name: "database", Type: "string", Description: "Database selected at connect", Category: "connection"},
		{Name: "path", Type: "string", Default: config.DefaultPath, Description: "Database file for sqlite and duckdb", Category: "connection"},
		{Name: "options", Type: "map[string]string", Description: "Driver parameters appended to the connection string", Category: "connection"},
		{Name: "params", Type: "map[string]any", Description: "Adapter settings such as DuckDB `extensions` and `settings`", Category: "connection"},

		{Name: "format", Type: "string", Default: config.DefaultFormat, Description: "Result format: " + strings.Join(config.Formats, ", "), Category: "shell"},
		{Name: "history_file", Type: "string", Default: "~/" + config.DefaultHistoryName, Description: "Readline history file", Category: "shell"},
		{Name: "auto_rehash", Type: "bool", Default: strconv.FormatBool(true), Description: "Load completion metadata at startup and after schema changes", Category: "shell"},
		{Name: "metadata_ttl", Type: "duration", Default: config.DefaultMetadataTTL.String(), Description: "How long cached metadata stays fresh", Category: "shell"},
		{Name: "system_databases", Type: "[]string", Description: "Extra databases hidden from completion", Category: "shell"},
		{Name: "log_level", Type: "string", Default: config.DefaultLogLevel, Description: "Log level: " + strings.Join(config.LogLevels, ", "), Category: "shell"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging with timestamps", Category: "shell"},
		{Name: "profile", Type: "string", Description: "Profile selected when --profile is not given", Category: "shell"},
		{Name: "profiles", Type: "map[string]profile", Description: "Named connection settings that override the top-level ones", Category: "shell"},
	}
}

func writeFieldTable(w *MarkdownWriter, category string) {
	headers := []string{"Key", "Type", "Default", "Description"}
	var rows [][]string
	for _, f := range getConfigSchema() {
		if f.Category != category {
			continue
		}
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
	}
	w.Table(headers, rows)
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "sqlsh configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("sqlsh reads `sqlsh.yaml`, `sqlsh.yml` or `sqlsh.toml` from the working directory or the nearest parent, then from `~/.config/sqlsh`. Use `--config` to name a file explicitly. `sqlsh config` prints the merged result.")

	w.Header(2, "Connection")
	writeFieldTable(w, "connection")

	w.Header(2, "Shell")
	writeFieldTable(w, "shell")

	w.Header(2, "Profiles")
	w.Paragraph("A profile overrides the connection keys of the file. Select one with `--profile`, `SQLSH_PROFILE` or the `profile` key.")
	w.CodeBlock("yaml", `type: mysql
host: localhost
user: dev
format: table

profiles:
  analytics:
    type: postgres
    host: warehouse.internal
    user: analyst
    password: ${WAREHOUSE_PASSWORD}
    database: events
  local:
    type: duckdb
    path: ./data/local.duckdb
    params:
      extensions:
        - parquet`)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		InlineCode(config.EnvPrefix+"*") + " environment variables",
		"The selected profile",
		"The config file",
		"Built-in defaults",
	})

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
