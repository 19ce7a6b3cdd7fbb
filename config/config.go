package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete exchange configuration
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Pricing   PricingConfig   `json:"pricing" yaml:"pricing"`
	Simulator SimulatorConfig `json:"simulator" yaml:"simulator"`
	Seed      SeedConfig      `json:"seed" yaml:"seed"`
}

// ServerConfig contains the HTTP API parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// JournalConfig contains write-through journaling parameters
type JournalConfig struct {
	Type         string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	DBPath       string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	FillsFile    string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	BalancesFile string `json:"balances_file,omitempty" yaml:"balances_file,omitempty"`
}

// PricingConfig controls the periodic price refresh
type PricingConfig struct {
	Interval string `json:"interval" yaml:"interval"` // e.g., "60s", "5m"
}

// ParseInterval converts the refresh interval to time.Duration
func (p PricingConfig) ParseInterval() (time.Duration, error) {
	return time.ParseDuration(p.Interval)
}

// SimulatorConfig contains random-trading driver parameters
type SimulatorConfig struct {
	Traders    int    `json:"traders" yaml:"traders"`
	Iterations int    `json:"iterations" yaml:"iterations"`
	Pace       string `json:"pace" yaml:"pace"` // delay between trades, e.g. "1s"
}

// ParsePace converts the per-iteration delay to time.Duration
func (s SimulatorConfig) ParsePace() (time.Duration, error) {
	return time.ParseDuration(s.Pace)
}

// SeedConfig lists accounts and instruments registered at startup
type SeedConfig struct {
	Accounts    []string         `json:"accounts" yaml:"accounts"`
	Instruments []SeedInstrument `json:"instruments" yaml:"instruments"`
}

// SeedInstrument describes one instrument to register at startup
type SeedInstrument struct {
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Quantity int64   `json:"quantity" yaml:"quantity"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// extension). Sections absent from the file keep their Default() values, so a
// serve-only config does not have to spell out simulator settings.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unmarshal over the defaults so partial configs stay valid.
	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Journal.Type {
	case "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.BalancesFile == "" {
			return fmt.Errorf("journal fills_file and balances_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if d, err := c.Pricing.ParseInterval(); err != nil || d <= 0 {
		return fmt.Errorf("pricing.interval must be a positive duration")
	}
	if c.Simulator.Traders < 1 {
		return fmt.Errorf("simulator.traders must be at least 1")
	}
	if c.Simulator.Iterations < 1 {
		return fmt.Errorf("simulator.iterations must be at least 1")
	}
	if d, err := c.Simulator.ParsePace(); err != nil || d < 0 {
		return fmt.Errorf("simulator.pace must be a non-negative duration")
	}
	for _, inst := range c.Seed.Instruments {
		if inst.Name == "" {
			return fmt.Errorf("seed instrument name is required")
		}
		if inst.Price <= 0 {
			return fmt.Errorf("seed instrument %s: price must be positive", inst.Name)
		}
		if inst.Quantity < 0 {
			return fmt.Errorf("seed instrument %s: quantity must be non-negative", inst.Name)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./exchange.sqlite",
		},
		Pricing: PricingConfig{
			Interval: "60s",
		},
		Simulator: SimulatorConfig{
			Traders:    4,
			Iterations: 25,
			Pace:       "1s",
		},
		Seed: SeedConfig{
			Accounts: []string{"alice", "bob", "carol"},
			Instruments: []SeedInstrument{
				{Name: "ACME", Price: 10.00, Quantity: 1000},
				{Name: "GLOBEX", Price: 42.50, Quantity: 500},
				{Name: "INITECH", Price: 7.25, Quantity: 2500},
			},
		},
	}
}
