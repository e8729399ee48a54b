package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix prefixes every environment variable read as configuration.
const EnvPrefix = "SQLSH_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// configNames are the file names searched for, in order.
var configNames = []string{"sqlsh.yaml", "sqlsh.yml", "sqlsh.toml"}

// flagKeys maps flag names to config keys where the two differ. Flags
// mapped to "" are not configuration.
var flagKeys = map[string]string{
	"execute": "",
	"config":  "",
	"cursor":  "",
	"help":    "",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// findConfigIn returns the first config file present in dir.
func findConfigIn(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := findConfigIn(dir); found != "" {
			return found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// findConfigFile finds the config file to use.
// Priority: explicit path > working directory and its parents > $HOME/.config/sqlsh
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cwd, err := os.Getwd(); err == nil {
		if found := findConfigUpward(cwd); found != "" {
			return found
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return findConfigIn(filepath.Join(home, ".config", "sqlsh"))
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from defaults, file, environment
// variables, and flags.
// Precedence (highest to lowest): flags > env vars > profile > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	fileK := koanf.New(".")
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := loadFile(fileK, configFileUsed); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: SQLSH_LOG_LEVEL -> log_level
	envK := koanf.New(".")
	if err := envK.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	flagK := koanf.New(".")
	if flags != nil {
		if err := flagK.Load(posflag.ProviderWithFlag(flags, ".", flagK, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Merge(fileK); err != nil {
		return nil, fmt.Errorf("failed to merge config file: %w", err)
	}

	profile := firstNonEmpty(flagK.String("profile"), envK.String("profile"), fileK.String("profile"))
	if profile != "" {
		path := "profiles." + profile
		if !fileK.Exists(path) {
			return nil, &ValidationError{
				Field:   "profile",
				Message: fmt.Sprintf("unknown profile %q (available: %s)", profile, strings.Join(fileK.MapKeys("profiles"), ", ")),
			}
		}
		if err := k.Merge(fileK.Cut(path)); err != nil {
			return nil, fmt.Errorf("failed to apply profile %s: %w", profile, err)
		}
	}

	if err := k.Merge(envK); err != nil {
		return nil, fmt.Errorf("failed to merge env vars: %w", err)
	}
	if err := k.Merge(flagK); err != nil {
		return nil, fmt.Errorf("failed to merge flags: %w", err)
	}

	// 5. Decode
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Profile = profile

	cfg.Type = strings.ToLower(cfg.Type)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.Port == 0 {
		cfg.Port = DefaultPort(cfg.Type)
	}
	expandConnectionEnvVars(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

// loadFile loads a YAML or TOML config file into ko.
func loadFile(ko *koanf.Koanf, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return err
		}
		return ko.Load(confmap.Provider(m, ""), nil)
	}
	return ko.Load(file.Provider(path), yaml.Parser())
}

// flagKey maps a changed flag to its config key and value.
func flagKey(flags *pflag.FlagSet, f *pflag.Flag) (string, interface{}) {
	if f.Name == "no-auto-rehash" {
		off, _ := flags.GetBool(f.Name)
		return "auto_rehash", !off
	}
	if f.Name == "password" && f.Value.String() == PasswordPrompt {
		return "", nil
	}
	key, ok := flagKeys[f.Name]
	if !ok {
		// Transform kebab-case to snake_case for config keys
		key = strings.ReplaceAll(f.Name, "-", "_")
	}
	if key == "" {
		return "", nil
	}
	return key, posflag.FlagVal(flags, f)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the configuration loaded by the last LoadConfig call.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandConnectionEnvVars expands environment variables in credential fields.
func expandConnectionEnvVars(c *Config) {
	c.Password = expandEnvVars(c.Password)
	c.User = expandEnvVars(c.User)
	c.Host = expandEnvVars(c.Host)
	c.Database = expandEnvVars(c.Database)
}
