package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "FEEDBACK_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	vendorURLEnv       = "VENDOR_API_URL"
	vendorKeyEnv       = "VENDOR_API_KEY"
	sentimentURLEnv    = "SENTIMENT_API_URL"
	sentimentKeyEnv    = "SENTIMENT_API_KEY"
	rosterPathEnv      = "ROSTER_PATH"
	portEnv            = "PORT"
	defaultPort        = "8080"
	defaultPageSize    = 100
	defaultMaxPages    = 50
	defaultBatchSize   = 100
	defaultFetchDelay  = 300 * time.Millisecond
	defaultBatchDelay  = 2 * time.Second
	defaultProgressTTL = 60 * time.Second
)

// Config holds all settings required across the service.
type Config struct {
	Port      string          `yaml:"port"`
	Database  DatabaseConfig  `yaml:"database"`
	Vendor    VendorConfig    `yaml:"vendor"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Roster    RosterConfig    `yaml:"roster"`
	Sync      SyncConfig      `yaml:"sync"`
}

// DatabaseConfig describes the Postgres connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// VendorConfig points at the call-transcription vendor API.
type VendorConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
}

// SentimentConfig points at the hosted sentiment-inference endpoint.
type SentimentConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
}

// RosterConfig locates the optional seller-roster workbook.
type RosterConfig struct {
	Path string `yaml:"path"`
}

// SyncConfig tunes pagination, chunking and the rate-limit delays of the
// batch sync.
type SyncConfig struct {
	PageSize     int           `yaml:"pageSize"`
	MaxPages     int           `yaml:"maxPages"`
	BatchSize    int           `yaml:"batchSize"`
	FetchDelayMs int           `yaml:"fetchDelayMs"`
	BatchDelayMs int           `yaml:"batchDelayMs"`
	ProgressTTLs int           `yaml:"progressTtlSec"`
	fetchDelay   time.Duration `yaml:"-"`
	batchDelay   time.Duration `yaml:"-"`
	progressTTL  time.Duration `yaml:"-"`
}

func (s SyncConfig) FetchDelay() time.Duration  { return s.fetchDelay }
func (s SyncConfig) BatchDelay() time.Duration  { return s.batchDelay }
func (s SyncConfig) ProgressTTL() time.Duration { return s.progressTTL }

// Load reads the YAML config file (if present) and applies environment
// overrides on top of compiled-in defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
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
	cfg.bindDurations()
	return cfg
}

// Validate fails fast on configuration-level problems; nothing should start
// when the vendor credentials or the store connection info are missing.
func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database dsn is required (%s)", databaseDSNEnv)
	}
	if c.Vendor.BaseURL == "" {
		return fmt.Errorf("config: vendor base url is required (%s)", vendorURLEnv)
	}
	if c.Vendor.APIKey == "" {
		return fmt.Errorf("config: vendor api key is required (%s)", vendorKeyEnv)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(vendorURLEnv); v != "" {
		c.Vendor.BaseURL = v
	}
	if v := os.Getenv(vendorKeyEnv); v != "" {
		c.Vendor.APIKey = v
	}
	if v := os.Getenv(sentimentURLEnv); v != "" {
		c.Sentiment.URL = v
	}
	if v := os.Getenv(sentimentKeyEnv); v != "" {
		c.Sentiment.APIKey = v
	}
	if v := os.Getenv(rosterPathEnv); v != "" {
		c.Roster.Path = v
	}
	if v := os.Getenv(portEnv); v != "" {
		c.Port = v
	}
}

func (c *Config) bindDurations() {
	c.Sync.fetchDelay = defaultFetchDelay
	if c.Sync.FetchDelayMs > 0 {
		c.Sync.fetchDelay = time.Duration(c.Sync.FetchDelayMs) * time.Millisecond
	}
	c.Sync.batchDelay = defaultBatchDelay
	if c.Sync.BatchDelayMs > 0 {
		c.Sync.batchDelay = time.Duration(c.Sync.BatchDelayMs) * time.Millisecond
	}
	c.Sync.progressTTL = defaultProgressTTL
	if c.Sync.ProgressTTLs > 0 {
		c.Sync.progressTTL = time.Duration(c.Sync.ProgressTTLs) * time.Second
	}
}

func mergeConfig(base, override Config) Config {
	if override.Port != "" {
		base.Port = override.Port
	}
	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Vendor.BaseURL != "" {
		base.Vendor.BaseURL = override.Vendor.BaseURL
	}
	if override.Vendor.APIKey != "" {
		base.Vendor.APIKey = override.Vendor.APIKey
	}
	if override.Sentiment.URL != "" {
		base.Sentiment.URL = override.Sentiment.URL
	}
	if override.Sentiment.APIKey != "" {
		base.Sentiment.APIKey = override.Sentiment.APIKey
	}
	if override.Roster.Path != "" {
		base.Roster = override.Roster
	}
	if override.Sync.PageSize > 0 {
		base.Sync.PageSize = override.Sync.PageSize
	}
	if override.Sync.MaxPages > 0 {
		base.Sync.MaxPages = override.Sync.MaxPages
	}
	if override.Sync.BatchSize > 0 {
		base.Sync.BatchSize = override.Sync.BatchSize
	}
	if override.Sync.FetchDelayMs > 0 {
		base.Sync.FetchDelayMs = override.Sync.FetchDelayMs
	}
	if override.Sync.BatchDelayMs > 0 {
		base.Sync.BatchDelayMs = override.Sync.BatchDelayMs
	}
	if override.Sync.ProgressTTLs > 0 {
		base.Sync.ProgressTTLs = override.Sync.ProgressTTLs
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Port: defaultPort,
		Sync: SyncConfig{
			PageSize:  defaultPageSize,
			MaxPages:  defaultMaxPages,
			BatchSize: defaultBatchSize,
		},
	}
}
