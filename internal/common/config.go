package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Scraper     ScraperConfig     `toml:"scraper"`
	Links       LinksConfig       `toml:"links"`
	Rewrite     RewriteConfig     `toml:"rewrite"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// ScraperConfig contains product page fetch and extraction configuration
type ScraperConfig struct {
	UserAgent        string        `toml:"user_agent"`         // Browser user agent sent on product page fetches
	RequestTimeout   time.Duration `toml:"request_timeout"`    // HTTP request timeout
	MaxRedirects     int           `toml:"max_redirects"`      // Maximum redirects followed per fetch
	BotRetryBackoff  time.Duration `toml:"bot_retry_backoff"`  // Delay before the single bot-protection retry
	ShortLinkDomains []string      `toml:"short_link_domains"` // Hosts resolved via redirect before normalization
	MaxBodySize      int64         `toml:"max_body_size"`      // Maximum response body size in bytes
}

// LinksConfig contains link lifecycle configuration
type LinksConfig struct {
	AffiliateTag    string `toml:"affiliate_tag"`     // Partner tracking tag appended to canonical URLs
	Source          string `toml:"source"`            // Partner identifier stored on created links
	MaxBatchSize    int    `toml:"max_batch_size"`    // Upper bound for bulk create requests
	ShortTitleWords int    `toml:"short_title_words"` // Words kept when deriving the short title
}

// RewriteConfig contains text-rewrite collaborator configuration
type RewriteConfig struct {
	Enabled        bool          `toml:"enabled"`
	APIKey         string        `toml:"api_key"`
	Model          string        `toml:"model"`
	MaxTokens      int           `toml:"max_tokens"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MinDescription int           `toml:"min_description"` // Descriptions shorter than this trigger a rewrite
}

// MaintenanceConfig contains reconciliation job configuration
type MaintenanceConfig struct {
	Enabled       bool          `toml:"enabled"`
	Schedule      string        `toml:"schedule"`       // Cron schedule, default daily
	RequestPacing time.Duration `toml:"request_pacing"` // Minimum interval between per-link fetches
}

// NewDefaultConfig returns a Config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/affilink.db",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Scraper: ScraperConfig{
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			RequestTimeout:   12 * time.Second,
			MaxRedirects:     5,
			BotRetryBackoff:  3 * time.Second,
			ShortLinkDomains: []string{"amzn.to", "amzn.in", "amzn.eu", "a.co"},
			MaxBodySize:      8 * 1024 * 1024,
		},
		Links: LinksConfig{
			AffiliateTag:    "",
			Source:          "amazon",
			MaxBatchSize:    20,
			ShortTitleWords: 8,
		},
		Rewrite: RewriteConfig{
			Enabled:        false,
			Model:          "claude-haiku-4-5",
			MaxTokens:      1024,
			RequestTimeout: 20 * time.Second,
			MinDescription: 40,
		},
		Maintenance: MaintenanceConfig{
			Enabled:       true,
			Schedule:      "0 3 * * *",
			RequestPacing: 2 * time.Second,
		},
	}
}

// LoadFromFile loads configuration from a TOML file, applying defaults first
// and environment overrides last. A missing path is not an error; defaults
// plus environment variables are used.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AFFILINK_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("AFFILINK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("AFFILINK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("AFFILINK_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("AFFILINK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if userAgent := os.Getenv("AFFILINK_SCRAPER_USER_AGENT"); userAgent != "" {
		config.Scraper.UserAgent = userAgent
	}
	if timeout := os.Getenv("AFFILINK_SCRAPER_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Scraper.RequestTimeout = d
		}
	}

	if tag := os.Getenv("AFFILINK_AFFILIATE_TAG"); tag != "" {
		config.Links.AffiliateTag = tag
	}
	if batch := os.Getenv("AFFILINK_MAX_BATCH_SIZE"); batch != "" {
		if n, err := strconv.Atoi(batch); err == nil {
			config.Links.MaxBatchSize = n
		}
	}

	if apiKey := os.Getenv("AFFILINK_REWRITE_API_KEY"); apiKey != "" {
		config.Rewrite.APIKey = apiKey
		config.Rewrite.Enabled = true
	}
	if model := os.Getenv("AFFILINK_REWRITE_MODEL"); model != "" {
		config.Rewrite.Model = model
	}

	if schedule := os.Getenv("AFFILINK_MAINTENANCE_SCHEDULE"); schedule != "" {
		config.Maintenance.Schedule = schedule
	}
}

// Validate checks configuration for values that would fail at runtime
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper request_timeout must be positive")
	}
	if c.Links.MaxBatchSize <= 0 {
		return fmt.Errorf("links max_batch_size must be positive")
	}
	if c.Maintenance.Schedule != "" {
		if _, err := cron.ParseStandard(c.Maintenance.Schedule); err != nil {
			return fmt.Errorf("invalid maintenance schedule %q: %w", c.Maintenance.Schedule, err)
		}
	}
	return nil
}

// IsProduction returns true when running with a production environment setting
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
