package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BOOKLEGEND_LOG_LEVEL.
const EnvPrefix = "BOOKLEGEND"

const fileName = "config.json"

// Config is the application configuration
type Config struct {
	DataDir              string
	APIBaseURL           string
	CoverHost            string
	HTTPTimeout          time.Duration
	RequestsPerSecond    float64
	SearchDebounce       time.Duration
	FavoritesConcurrency int
	LogLevel             string
	MetricsAddr          string // empty disables the metrics listener
}

// DefaultDataDir returns ~/.booklegend
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".booklegend"
	}
	return filepath.Join(home, ".booklegend")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("api_base_url", "https://openlibrary.org")
	v.SetDefault("cover_host", "covers.openlibrary.org")
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("requests_per_second", 5.0)
	v.SetDefault("search_debounce", "500ms")
	v.SetDefault("favorites_concurrency", 8)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")
}

// Load builds the configuration from defaults, <dataDir>/config.json and
// BOOKLEGEND_* environment variables, later sources winning. An empty dataDir
// falls back to BOOKLEGEND_DATA_DIR, then ~/.booklegend. A missing file is
// not an error.
func Load(dataDir string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if dataDir == "" {
		dataDir = v.GetString("data_dir")
	}

	v.SetConfigFile(filepath.Join(dataDir, fileName))
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		DataDir:              dataDir,
		APIBaseURL:           v.GetString("api_base_url"),
		CoverHost:            v.GetString("cover_host"),
		HTTPTimeout:          v.GetDuration("http_timeout"),
		RequestsPerSecond:    v.GetFloat64("requests_per_second"),
		SearchDebounce:       v.GetDuration("search_debounce"),
		FavoritesConcurrency: v.GetInt("favorites_concurrency"),
		LogLevel:             v.GetString("log_level"),
		MetricsAddr:          v.GetString("metrics_addr"),
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("config: http_timeout must be positive, got %q", v.GetString("http_timeout"))
	}
	return cfg, nil
}

// Path returns the config file location
func (c *Config) Path() string {
	return filepath.Join(c.DataDir, fileName)
}

// DatabasePath returns the preference database location
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "booklegend.db")
}

// Save writes config to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("api_base_url", c.APIBaseURL)
	v.Set("cover_host", c.CoverHost)
	v.Set("http_timeout", c.HTTPTimeout.String())
	v.Set("requests_per_second", c.RequestsPerSecond)
	v.Set("search_debounce", c.SearchDebounce.String())
	v.Set("favorites_concurrency", c.FavoritesConcurrency)
	v.Set("log_level", c.LogLevel)
	v.Set("metrics_addr", c.MetricsAddr)

	if err := v.WriteConfigAs(c.Path()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
