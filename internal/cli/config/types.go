// Package config provides configuration management for the sqlsh CLI.
//
// Values are layered with koanf: built-in defaults, then a config file
// (sqlsh.yaml, sqlsh.yml or sqlsh.toml), then SQLSH_* environment
// variables, then flags set on the command line. A named profile from the
// config file is applied on top of the file's top-level keys.
package config

import (
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

// Config holds all CLI configuration options.
type Config struct {
	Type            string             `koanf:"type" yaml:"type"`
	Host            string             `koanf:"host" yaml:"host,omitempty"`
	Port            int                `koanf:"port" yaml:"port,omitempty"`
	User            string             `koanf:"user" yaml:"user,omitempty"`
	Password        string             `koanf:"password" yaml:"password,omitempty"`
	Database        string             `koanf:"database" yaml:"database,omitempty"`
	Path            string             `koanf:"path" yaml:"path,omitempty"`
	Options         map[string]string  `koanf:"options" yaml:"options,omitempty"`
	Params          map[string]any     `koanf:"params" yaml:"params,omitempty"`
	Format          string             `koanf:"format" yaml:"format"`
	HistoryFile     string             `koanf:"history_file" yaml:"history_file"`
	AutoRehash      bool               `koanf:"auto_rehash" yaml:"auto_rehash"`
	MetadataTTL     time.Duration      `koanf:"metadata_ttl" yaml:"metadata_ttl"`
	SystemDatabases []string           `koanf:"system_databases" yaml:"system_databases,omitempty"`
	Verbose         bool               `koanf:"verbose" yaml:"verbose"`
	LogLevel        string             `koanf:"log_level" yaml:"log_level"`
	Profile         string             `koanf:"profile" yaml:"profile,omitempty"`
	Profiles        map[string]Profile `koanf:"profiles" yaml:"profiles,omitempty"`
}

// Profile is a named set of connection overrides selected with --profile.
type Profile struct {
	Type     string            `koanf:"type" yaml:"type,omitempty"`
	Host     string            `koanf:"host" yaml:"host,omitempty"`
	Port     int               `koanf:"port" yaml:"port,omitempty"`
	User     string            `koanf:"user" yaml:"user,omitempty"`
	Password string            `koanf:"password" yaml:"password,omitempty"`
	Database string            `koanf:"database" yaml:"database,omitempty"`
	Path     string            `koanf:"path" yaml:"path,omitempty"`
	Options  map[string]string `koanf:"options" yaml:"options,omitempty"`
	Params   map[string]any    `koanf:"params" yaml:"params,omitempty"`
}

// Default configuration values.
const (
	DefaultType        = "mysql"
	DefaultHost        = "localhost"
	DefaultPath        = ":memory:"
	DefaultFormat      = "table"
	DefaultLogLevel    = "warn"
	DefaultMetadataTTL = 300 * time.Second
	DefaultHistoryName = ".sqlsh_history"

	// PasswordPrompt is the value -p takes when given without a password.
	PasswordPrompt = "<prompt>"

	maskedPassword = "********"
)

// Formats lists the accepted result formats.
var Formats = []string{"table", "json", "csv", "markdown"}

// LogLevels lists the accepted log levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// DefaultPort returns the server port used when none is configured.
func DefaultPort(dbType string) int {
	switch dbType {
	case "mysql":
		return 3306
	case "postgres":
		return 5432
	default:
		return 0
	}
}

// DefaultHistoryFile returns $HOME/.sqlsh_history, or a file in the
// working directory when the home directory is unknown.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultHistoryName
	}
	return filepath.Join(home, DefaultHistoryName)
}

func defaults() map[string]any {
	return map[string]any{
		"type":         DefaultType,
		"host":         DefaultHost,
		"path":         DefaultPath,
		"format":       DefaultFormat,
		"history_file": DefaultHistoryFile(),
		"auto_rehash":  true,
		"metadata_ttl": DefaultMetadataTTL,
		"verbose":      false,
		"log_level":    DefaultLogLevel,
	}
}

// AdapterConfig converts the connection settings into an adapter config.
func (c *Config) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     c.Type,
		Path:     c.Path,
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.User,
		Password: c.Password,
		Options:  maps.Clone(c.Options),
		Params:   maps.Clone(c.Params),
	}
}

// Masked returns a copy of c with every password replaced.
func (c *Config) Masked() *Config {
	out := *c
	if out.Password != "" {
		out.Password = maskedPassword
	}
	if len(c.Profiles) > 0 {
		out.Profiles = make(map[string]Profile, len(c.Profiles))
		for name, p := range c.Profiles {
			if p.Password != "" {
				p.Password = maskedPassword
			}
			out.Profiles[name] = p
		}
	}
	return &out
}
