package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://egymonuments.gov.eg", cfg.Website.BaseURL)
	assert.Contains(t, cfg.Website.PageTypes, "archaeological-sites")
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 0.65, cfg.Research.MatchThreshold)
	assert.Equal(t, 2, cfg.Research.Concurrency)
	assert.Equal(t, 1000, cfg.RateLimit.GeocodingIntervalMs)
	assert.Equal(t, "data/unlock_egypt.json", cfg.Output.Path)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout())
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
website:
  base_url: https://staging.example
research:
  concurrency: 4
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example", cfg.Website.BaseURL)
	assert.Equal(t, 4, cfg.Research.Concurrency)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.65, cfg.Research.MatchThreshold)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Parallel()

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		cfg, err := Load(viper.New(), "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty base url", mutate: func(c *Config) { c.Website.BaseURL = "" }},
		{name: "zero threshold", mutate: func(c *Config) { c.Research.MatchThreshold = 0 }},
		{name: "threshold above one", mutate: func(c *Config) { c.Research.MatchThreshold = 1.5 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.Research.Concurrency = 0 }},
		{name: "zero http timeout", mutate: func(c *Config) { c.HTTP.TimeoutSeconds = 0 }},
		{name: "unpaced geocoding", mutate: func(c *Config) { c.RateLimit.GeocodingIntervalMs = 0 }},
		{name: "empty output path", mutate: func(c *Config) { c.Output.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
