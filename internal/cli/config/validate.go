package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlsh/pkg/adapter"
)

// ValidationError reports a configuration value that cannot be used.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks if the configuration is valid.
// The adapter registry decides which database types are available.
func (c *Config) Validate() error {
	if c.Type == "" {
		return &ValidationError{Field: "type", Message: "database type is required"}
	}
	if !adapter.IsRegistered(c.Type) {
		return &adapter.UnknownAdapterError{
			Type:      c.Type,
			Available: adapter.ListAdapters(),
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: fmt.Sprintf("%d is out of range", c.Port)}
	}
	if !slices.Contains(Formats, c.Format) {
		return &ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown format %q (expected one of %s)", c.Format, strings.Join(Formats, ", ")),
		}
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		return &ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("unknown level %q (expected one of %s)", c.LogLevel, strings.Join(LogLevels, ", ")),
		}
	}
	if c.MetadataTTL < 0 {
		return &ValidationError{Field: "metadata_ttl", Message: "must not be negative"}
	}
	return nil
}
