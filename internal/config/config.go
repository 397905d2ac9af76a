package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "NEWSQUIZ_CONFIG"
	apiURLEnv     = "NEWSQUIZ_API_URL"
	storageEnv    = "NEWSQUIZ_STORAGE"
	dbPathEnv     = "NEWSQUIZ_DB_PATH"
	redisURLEnv   = "REDIS_URL"
	logLevelEnv   = "LOG_LEVEL"
	logFormatEnv  = "LOG_FORMAT"
	pageSizeEnv   = "NEWSQUIZ_PAGE_SIZE"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds high-level settings required across the application.
type Config struct {
	Content  ContentConfig  `yaml:"content"`
	Storage  StorageConfig  `yaml:"storage"`
	Settings SettingsConfig `yaml:"settings"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ContentConfig describes the article source.
type ContentConfig struct {
	BaseURL         string      `yaml:"baseUrl"`
	PageSize        int         `yaml:"pageSize"`
	Category        string      `yaml:"category"`
	Timeout         Duration    `yaml:"timeout"`
	RefreshInterval Duration    `yaml:"refreshInterval"`
	Retry           RetryConfig `yaml:"retry"`
}

// RetryConfig bounds transport retries.
type RetryConfig struct {
	MaxAttempts     int      `yaml:"maxAttempts"`
	InitialInterval Duration `yaml:"initialInterval"`
	MaxInterval     Duration `yaml:"maxInterval"`
}

// StorageConfig selects where answers and settings are persisted.
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlitePath"`
	RedisURL   string `yaml:"redisUrl"`
	Namespace  string `yaml:"namespace"`
}

// SettingsConfig carries preference defaults.
type SettingsConfig struct {
	DefaultLanguage string `yaml:"defaultLanguage"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration accepts "10s"-style strings in YAML.
type Duration time.Duration

// UnmarshalYAML parses a time.ParseDuration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads YAML configuration from NEWSQUIZ_CONFIG (if set) and applies
// environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit path; an empty path skips the file.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.validate()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiURLEnv); v != "" {
		c.Content.BaseURL = v
	}

	if v := os.Getenv(storageEnv); v != "" {
		c.Storage.Backend = v
	}

	if v := os.Getenv(dbPathEnv); v != "" {
		c.Storage.SQLitePath = v
	}

	if v := os.Getenv(redisURLEnv); v != "" {
		c.Storage.RedisURL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(pageSizeEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Content.PageSize = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", pageSizeEnv, v, err)
		}
	}
}

// validate replaces unusable values with defaults.
func (c *Config) validate() {
	def := defaultConfig()

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		log.Printf("config: unknown storage backend %q, reverting to %s", c.Storage.Backend, def.Storage.Backend)
		c.Storage.Backend = def.Storage.Backend
	}

	if c.Content.PageSize <= 0 {
		log.Printf("config: invalid page size %d, reverting to %d", c.Content.PageSize, def.Content.PageSize)
		c.Content.PageSize = def.Content.PageSize
	}
	if c.Content.Timeout <= 0 {
		c.Content.Timeout = def.Content.Timeout
	}
	if c.Content.RefreshInterval <= 0 {
		c.Content.RefreshInterval = def.Content.RefreshInterval
	}
	if c.Content.Retry.MaxAttempts <= 0 {
		c.Content.Retry.MaxAttempts = def.Content.Retry.MaxAttempts
	}
	if c.Content.Retry.InitialInterval <= 0 {
		c.Content.Retry.InitialInterval = def.Content.Retry.InitialInterval
	}
	if c.Content.Retry.MaxInterval < c.Content.Retry.InitialInterval {
		c.Content.Retry.MaxInterval = c.Content.Retry.InitialInterval
	}
}

func mergeConfig(base, override Config) Config {
	if override.Content.BaseURL != "" {
		base.Content.BaseURL = override.Content.BaseURL
	}
	if override.Content.PageSize != 0 {
		base.Content.PageSize = override.Content.PageSize
	}
	if override.Content.Category != "" {
		base.Content.Category = override.Content.Category
	}
	if override.Content.Timeout != 0 {
		base.Content.Timeout = override.Content.Timeout
	}
	if override.Content.RefreshInterval != 0 {
		base.Content.RefreshInterval = override.Content.RefreshInterval
	}
	if override.Content.Retry.MaxAttempts != 0 {
		base.Content.Retry.MaxAttempts = override.Content.Retry.MaxAttempts
	}
	if override.Content.Retry.InitialInterval != 0 {
		base.Content.Retry.InitialInterval = override.Content.Retry.InitialInterval
	}
	if override.Content.Retry.MaxInterval != 0 {
		base.Content.Retry.MaxInterval = override.Content.Retry.MaxInterval
	}

	if override.Storage.Backend != "" {
		base.Storage.Backend = override.Storage.Backend
	}
	if override.Storage.SQLitePath != "" {
		base.Storage.SQLitePath = override.Storage.SQLitePath
	}
	if override.Storage.RedisURL != "" {
		base.Storage.RedisURL = override.Storage.RedisURL
	}
	if override.Storage.Namespace != "" {
		base.Storage.Namespace = override.Storage.Namespace
	}

	if override.Settings.DefaultLanguage != "" {
		base.Settings.DefaultLanguage = override.Settings.DefaultLanguage
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Content: ContentConfig{
			BaseURL:         "https://api.example.org/v1",
			PageSize:        10,
			Timeout:         Duration(10 * time.Second),
			RefreshInterval: Duration(5 * time.Minute),
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: Duration(200 * time.Millisecond),
				MaxInterval:     Duration(2 * time.Second),
			},
		},
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			SQLitePath: "newsquiz.db",
			RedisURL:   "redis://localhost:6379/0",
			Namespace:  "newsquiz:",
		},
		Settings: SettingsConfig{DefaultLanguage: "en"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}
