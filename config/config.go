package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Database   DatabaseConfig   `yaml:"database"`
	DataSource DataSourceConfig `yaml:"data_source"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" split_words:"true"`
	RequestIPHeader string  `yaml:"request_ip_header" split_words:"true"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" split_words:"true"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds" envconfig:"CACHE_TTL_SECONDS"`
}

// AnalysisConfig holds the analysis engine configuration.
type AnalysisConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds" split_words:"true"`
	Interval        time.Duration `yaml:"-" ignored:"true"` // Ignored by YAML parser
	HistoryLimit    int           `yaml:"history_limit" split_words:"true"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns           int    `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" split_words:"true"`
}

// DataSourceConfig selects where listing data comes from. Mode "database"
// reads the live store; "synthetic" serves a generated in-memory market.
type DataSourceConfig struct {
	Mode            string `yaml:"mode"`
	Seed            int64  `yaml:"seed"`
	ListingsPerCity int    `yaml:"listings_per_city" split_words:"true"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key" envconfig:"VAPID_PUBLIC_KEY"`
	PrivateKey string `yaml:"vapid_private_key" envconfig:"VAPID_PRIVATE_KEY"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

const (
	ModeDatabase  = "database"
	ModeSynthetic = "synthetic"
)

// Load reads the configuration from the given path, then applies MARKET_*
// environment variable overrides on top of the file values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process("market", &cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	return applyDefaults(&cfg)
}

func applyDefaults(cfg *Config) (*Config, error) {
	if cfg.Analysis.IntervalSeconds <= 0 {
		cfg.Analysis.IntervalSeconds = 3600
	}
	cfg.Analysis.Interval = time.Duration(cfg.Analysis.IntervalSeconds) * time.Second

	if cfg.Analysis.HistoryLimit <= 0 {
		cfg.Analysis.HistoryLimit = 30
	}

	switch cfg.DataSource.Mode {
	case "":
		cfg.DataSource.Mode = ModeDatabase
	case ModeDatabase, ModeSynthetic:
	default:
		return nil, fmt.Errorf("unknown data_source.mode %q", cfg.DataSource.Mode)
	}
	if cfg.DataSource.ListingsPerCity <= 0 {
		cfg.DataSource.ListingsPerCity = 40
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return cfg, nil
}
