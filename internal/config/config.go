// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"sitecost/core/types"
	"sitecost/internal/errors"
	"sitecost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version" toml:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing" yaml:"pricing" toml:"pricing"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output" toml:"output"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" yaml:"server" toml:"server"`

	// Storage contains estimate storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage" toml:"storage"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging" toml:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is the currency hourly rates are quoted in
	Currency types.Currency `json:"currency" yaml:"currency" toml:"currency"`

	// HourlyRate is used when a request does not carry one
	HourlyRate float64 `json:"hourly_rate" yaml:"hourly_rate" toml:"hourly_rate"`

	// RateTable is an optional HCL file replacing the built-in rate table
	RateTable string `json:"rate_table,omitempty" yaml:"rate_table,omitempty" toml:"rate_table,omitempty"`

	// RatesFile is an optional JSON or YAML currency rate snapshot
	RatesFile string `json:"rates_file,omitempty" yaml:"rates_file,omitempty" toml:"rates_file,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format (cli, json, markdown)
	Format string `json:"format" yaml:"format" toml:"format"`

	// HideAssumptions omits the assumptions list from rendered output
	HideAssumptions bool `json:"hide_assumptions" yaml:"hide_assumptions" toml:"hide_assumptions"`

	// HideRetainers omits the retainer menu from rendered output
	HideRetainers bool `json:"hide_retainers" yaml:"hide_retainers" toml:"hide_retainers"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// ReadTimeoutSeconds bounds reading a request
	ReadTimeoutSeconds int `json:"read_timeout_seconds" yaml:"read_timeout_seconds" toml:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing a response
	WriteTimeoutSeconds int `json:"write_timeout_seconds" yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`

	// ShutdownTimeoutSeconds bounds graceful shutdown
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`
}

// StorageConfig selects where estimates are saved
type StorageConfig struct {
	// Driver is sqlite, mysql or postgres
	Driver string `json:"driver" yaml:"driver" toml:"driver"`

	// DSN is the driver-specific data source. For sqlite it is a file path.
	DSN string `json:"dsn" yaml:"dsn" toml:"dsn"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Currency:   types.CurrencyUSD,
			HourlyRate: 100,
		},
		Output: OutputConfig{
			Format: "cli",
		},
		Server: ServerConfig{
			Addr:                   ":8080",
			ReadTimeoutSeconds:     15,
			WriteTimeoutSeconds:    15,
			ShutdownTimeoutSeconds: 10,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    defaultDSN(),
		},
		Logging: logging.DefaultConfig(),
	}
}

func defaultDSN() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "sitecost.db"
	}
	return filepath.Join(homeDir, ".sitecost", "estimates.db")
}

// HourlyRateDecimal returns the configured default rate as a decimal
func (p PricingConfig) HourlyRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(p.HourlyRate)
}

// Load loads configuration from a TOML, YAML or JSON file. A missing file
// yields the defaults; fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("failed to read config file", err)
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, errors.Config("error parsing TOML file", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.Config("error parsing YAML file", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, errors.Config("error parsing JSON file", err)
		}
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported config file format: %s", ext)
	}

	config.applyDefaults(Default())
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults(d *Config) {
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Pricing.Currency == "" {
		c.Pricing.Currency = d.Pricing.Currency
	}
	c.Pricing.Currency = types.NormalizeCurrency(string(c.Pricing.Currency))
	if c.Pricing.HourlyRate == 0 {
		c.Pricing.HourlyRate = d.Pricing.HourlyRate
	}
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = d.Server.ReadTimeoutSeconds
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = d.Server.WriteTimeoutSeconds
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = d.Server.ShutdownTimeoutSeconds
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.DSN == "" && c.Storage.Driver == d.Storage.Driver {
		c.Storage.DSN = d.Storage.DSN
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = d.Logging.Output
	}
}

// Validate checks values that would otherwise fail deep inside a request
func (c *Config) Validate() error {
	if c.Pricing.HourlyRate < 0 {
		return errors.InvalidNumeric("pricing.hourly_rate", "must not be negative")
	}
	switch c.Output.Format {
	case "cli", "json", "markdown", "pdf":
	default:
		return errors.Newf(errors.TypeConfig, "unknown output format %q", c.Output.Format)
	}
	switch c.Storage.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Newf(errors.TypeConfig, "unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 || c.Server.ShutdownTimeoutSeconds < 0 {
		return errors.New(errors.TypeConfig, "server timeouts must not be negative")
	}
	return nil
}

// Save saves configuration to a file, in the format its extension names
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("failed to create config directory", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(c)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Config("failed to encode config", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
