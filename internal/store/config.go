package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrMissingCredentials = errors.New("BINANCE_API_KEY and BINANCE_API_SECRET must be set")

type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		Endpoint       string `yaml:"endpoint"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxPages       int    `yaml:"max_pages"`
		RowsPerPage    int    `yaml:"rows_per_page"`
		PageDelayMs    int    `yaml:"page_delay_ms"`
	} `yaml:"api"`
	Analysis struct {
		DaysBack       int     `yaml:"days_back"`
		CommissionRate float64 `yaml:"commission_rate"`
		BaseCurrency   string  `yaml:"base_currency"`
		Timezone       string  `yaml:"timezone"`
		OutputDir      string  `yaml:"output_dir"`
		OutputFile     string  `yaml:"output_file"`
	} `yaml:"analysis"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// Credentials are read from the environment only, never from the config file.
type Credentials struct {
	APIKey    string
	APISecret string
}

func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://api.binance.com"
	}
	if c.API.Endpoint == "" {
		c.API.Endpoint = "/sapi/v1/c2c/orderMatch/listUserOrderHistory"
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 30
	}
	if c.API.MaxPages == 0 {
		c.API.MaxPages = 10
	}
	if c.API.RowsPerPage == 0 {
		c.API.RowsPerPage = 100
	}
	if c.API.PageDelayMs == 0 {
		c.API.PageDelayMs = 200
	}
	if c.Analysis.DaysBack == 0 {
		c.Analysis.DaysBack = 30
	}
	if c.Analysis.CommissionRate == 0 {
		c.Analysis.CommissionRate = 0.0014
	}
	if c.Analysis.BaseCurrency == "" {
		c.Analysis.BaseCurrency = "USDT"
	}
	if c.Analysis.Timezone == "" {
		c.Analysis.Timezone = "UTC"
	}
	if c.Analysis.OutputDir == "" {
		c.Analysis.OutputDir = "data"
	}
	if c.Analysis.OutputFile == "" {
		c.Analysis.OutputFile = "p2p-data.json"
	}
}

func (c *Config) Validate() error {
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.API.MaxPages <= 0 {
		return fmt.Errorf("api.max_pages must be positive, got %d", c.API.MaxPages)
	}
	if c.API.RowsPerPage <= 0 {
		return fmt.Errorf("api.rows_per_page must be positive, got %d", c.API.RowsPerPage)
	}
	if c.API.PageDelayMs < 0 {
		return fmt.Errorf("api.page_delay_ms cannot be negative, got %d", c.API.PageDelayMs)
	}
	if c.Analysis.DaysBack <= 0 {
		return fmt.Errorf("analysis.days_back must be positive, got %d", c.Analysis.DaysBack)
	}
	if c.Analysis.CommissionRate < 0 || c.Analysis.CommissionRate >= 1 {
		return fmt.Errorf("analysis.commission_rate must be in [0, 1), got %g", c.Analysis.CommissionRate)
	}
	if c.Analysis.OutputFile == "" {
		return fmt.Errorf("analysis.output_file is required")
	}
	if _, err := time.LoadLocation(c.Analysis.Timezone); err != nil {
		return fmt.Errorf("analysis.timezone '%s': %w", c.Analysis.Timezone, err)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.API.PageDelayMs) * time.Millisecond
}

func (c *Config) OutputPath() string {
	return filepath.Join(c.Analysis.OutputDir, c.Analysis.OutputFile)
}

// Location is only meaningful after Validate succeeded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Keys absent from the file keep their defaults; explicit zeros survive.
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return c, nil
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to the built-in
// defaults when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		APIKey:    os.Getenv("BINANCE_API_KEY"),
		APISecret: os.Getenv("BINANCE_API_SECRET"),
	}
	if creds.APIKey == "" || creds.APISecret == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return "**************"
	}
	return "**********" + secret[len(secret)-4:]
}
