package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("WORDSAPI_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Application.sqlite", cfg.DatabasePath)
	assert.Equal(t, "web2", cfg.WordListPath)
	assert.Equal(t, "threshold", cfg.Quota.Mode)
	assert.Equal(t, 2500, cfg.Quota.Ceiling)
	assert.Equal(t, 2500, cfg.Quota.Min())
	assert.Equal(t, 10*time.Second, cfg.Dictionary.Timeout)
	assert.Equal(t, "X-RateLimit-Requests-Remaining", cfg.Dictionary.QuotaHeader)
	assert.Equal(t, "secret", cfg.Dictionary.APIKey)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordfilter.yaml")
	yamlContent := `
env: development
database_path: corpus.sqlite
word_list_path: /usr/share/dict/words
dictionary:
  base_url: http://localhost:9999
  timeout: 3s
  requests_per_second: 2.5
quota:
  mode: threshold
  ceiling: 500
  threshold: 50
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))
	t.Setenv("WORDFILTER_DB", "override.sqlite")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "override.sqlite", cfg.DatabasePath, "env wins over yaml")
	assert.Equal(t, "/usr/share/dict/words", cfg.WordListPath)
	assert.Equal(t, "http://localhost:9999", cfg.Dictionary.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Dictionary.Timeout)
	assert.InDelta(t, 2.5, cfg.Dictionary.RequestsPerSecond, 1e-9)
	assert.Equal(t, 50, cfg.Quota.Min())
}

func TestLoad_APIKeyIgnoredInYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordfilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dictionary:\n  api_key: leaked\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotEqual(t, "leaked", cfg.Dictionary.APIKey)
}

func TestLoad_InvalidMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordfilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quota:\n  mode: sometimes\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabasePath: "x.sqlite",
			Quota:        QuotaConfig{Mode: "unlimited", Ceiling: 2500},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"negative ceiling", func(c *Config) { c.Quota.Ceiling = -1 }, true},
		{"negative threshold", func(c *Config) { c.Quota.Threshold = -5 }, true},
		{"negative rps", func(c *Config) { c.Dictionary.RequestsPerSecond = -1 }, true},
		{"negative timeout", func(c *Config) { c.Dictionary.Timeout = -time.Second }, true},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }, true},
		{"empty mode", func(c *Config) { c.Quota.Mode = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuotaMin(t *testing.T) {
	assert.Equal(t, 2500, QuotaConfig{Ceiling: 2500}.Min())
	assert.Equal(t, 10, QuotaConfig{Ceiling: 2500, Threshold: 10}.Min())
}
