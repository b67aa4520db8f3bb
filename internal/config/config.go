package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration unless told
// otherwise.
const DefaultPath = "wastenot.yaml"

// Config holds all wastenot configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
	UI       UIConfig       `yaml:"ui"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	BusyTimeout string `yaml:"busy_timeout"`
}

// CacheConfig controls query memoization.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTL        string `yaml:"ttl"`
	MaxEntries int    `yaml:"max_entries"`
}

// ExportConfig controls CSV export.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // console|json
	File   string `yaml:"file"`   // empty writes to stderr
}

// UIConfig controls the dashboard.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto|light|dark
	Watch bool   `yaml:"watch"` // refresh on external database changes
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "Local_Food_Wastage.db",
			BusyTimeout: "5s",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        "5m",
			MaxEntries: 128,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Theme: "auto",
			Watch: true,
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults
// when the file does not exist. Environment variables override both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("WASTENOT_DB"); path != "" {
		c.Database.Path = path
	}
	if level := os.Getenv("WASTENOT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if mode := os.Getenv("WASTENOT_DARK_MODE"); mode != "" {
		if mode == "1" || mode == "true" {
			c.UI.Theme = "dark"
		} else {
			c.UI.Theme = "light"
		}
	}
}

// GetBusyTimeout returns the SQLite busy timeout as a duration.
func (c *Config) GetBusyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Database.BusyTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetCacheTTL returns the query cache TTL as a duration.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path not configured")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	switch c.UI.Theme {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("unknown theme %q", c.UI.Theme)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max_entries must not be negative")
	}
	return nil
}
