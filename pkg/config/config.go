package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Postgres struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Database string `yaml:"database"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"ssl_mode"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Quotes struct {
		BaseURL     string        `yaml:"base_url"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxRPS      float64       `yaml:"max_rps"`
		SparkPoints int           `yaml:"spark_points"`
	} `yaml:"quotes"`
	Brain struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"brain"`
	Search struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"search"`
	CacheTTL struct {
		Price    time.Duration `yaml:"price"`
		Unified  time.Duration `yaml:"unified"`
		Forecast time.Duration `yaml:"forecast"`
		Trending time.Duration `yaml:"trending"`
	} `yaml:"cache_ttl"`
	Audit struct {
		MinuteOffset  int           `yaml:"minute_offset"`
		MaxPendingAge time.Duration `yaml:"max_pending_age"`
	} `yaml:"audit"`
	Stream struct {
		PushInterval time.Duration `yaml:"push_interval"`
	} `yaml:"stream"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BRAIN_URL"); v != "" {
		c.Brain.BaseURL = v
	}
	if v := os.Getenv("QUOTES_URL"); v != "" {
		c.Quotes.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		c.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		c.Search.APIKey = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.CacheTTL.Price <= 0 {
		c.CacheTTL.Price = 120 * time.Second
	}
	if c.CacheTTL.Unified <= 0 {
		c.CacheTTL.Unified = time.Hour
	}
	if c.CacheTTL.Forecast <= 0 {
		c.CacheTTL.Forecast = 24 * time.Hour
	}
	if c.CacheTTL.Trending <= 0 {
		c.CacheTTL.Trending = 5 * time.Minute
	}
	if c.Audit.MinuteOffset <= 0 {
		c.Audit.MinuteOffset = 5
	}
	if c.Audit.MaxPendingAge <= 0 {
		c.Audit.MaxPendingAge = 72 * time.Hour
	}
	if c.Quotes.SparkPoints <= 0 {
		c.Quotes.SparkPoints = 24
	}
	if c.Stream.PushInterval <= 0 {
		c.Stream.PushInterval = 5 * time.Second
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://financialmodelingprep.com"
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 10 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Quotes.BaseURL == "" {
		return fmt.Errorf("quotes.base_url is required")
	}
	if c.Brain.BaseURL == "" {
		return fmt.Errorf("brain.base_url is required")
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Audit.MinuteOffset >= 60 {
		return fmt.Errorf("audit.minute_offset must be below 60, got %d", c.Audit.MinuteOffset)
	}
	return nil
}
