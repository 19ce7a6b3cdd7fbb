package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	interval, err := cfg.Pricing.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, interval)

	pace, err := cfg.Simulator.ParsePace()
	require.NoError(t, err)
	assert.Equal(t, time.Second, pace)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"exchange.yaml", "exchange.json"} {
		path := filepath.Join(dir, name)

		cfg := Default()
		cfg.Server.Addr = ":9999"
		cfg.Journal.Type = "csv"
		cfg.Journal.FillsFile = "fills.csv"
		cfg.Journal.BalancesFile = "balances.csv"
		require.NoError(t, cfg.SaveToFile(path))

		loaded, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, loaded, name)
	}
}

// A serve-only config file lists just the sections it overrides; everything
// else inherits Default().
func TestLoadPartialConfigInheritsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "serve.yaml")
	data := []byte("server:\n  addr: \":9001\"\njournal:\n  type: none\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9001", cfg.Server.Addr)
	assert.Equal(t, "none", cfg.Journal.Type)
	assert.Equal(t, Default().Pricing, cfg.Pricing)
	assert.Equal(t, Default().Simulator, cfg.Simulator)
	assert.Equal(t, Default().Seed, cfg.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing addr", func(c *Config) { c.Server.Addr = "" }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"sqlite without path", func(c *Config) { c.Journal.DBPath = "" }},
		{"csv without files", func(c *Config) { c.Journal.Type = "csv" }},
		{"bad interval", func(c *Config) { c.Pricing.Interval = "soon" }},
		{"zero interval", func(c *Config) { c.Pricing.Interval = "0s" }},
		{"no traders", func(c *Config) { c.Simulator.Traders = 0 }},
		{"no iterations", func(c *Config) { c.Simulator.Iterations = 0 }},
		{"bad pace", func(c *Config) { c.Simulator.Pace = "fast" }},
		{"unnamed seed instrument", func(c *Config) { c.Seed.Instruments[0].Name = "" }},
		{"free seed instrument", func(c *Config) { c.Seed.Instruments[0].Price = 0 }},
		{"negative seed inventory", func(c *Config) { c.Seed.Instruments[0].Quantity = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
