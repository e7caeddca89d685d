package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultPath is read when no --config flag is given.
const DefaultPath = "wordfilter.yaml"

var validate = validator.New()

type Config struct {
	Env          string `yaml:"env" env:"WORDFILTER_ENV" env-default:"production"`
	DatabasePath string `yaml:"database_path" env:"WORDFILTER_DB" env-default:"Application.sqlite" validate:"required"`
	WordListPath string `yaml:"word_list_path" env:"WORDFILTER_WORDLIST" env-default:"web2"`

	Dictionary DictionaryConfig `yaml:"dictionary"`
	Quota      QuotaConfig      `yaml:"quota"`
}

type DictionaryConfig struct {
	BaseURL     string        `yaml:"base_url" env:"WORDSAPI_BASE_URL" env-default:"https://wordsapiv1.p.rapidapi.com"`
	Host        string        `yaml:"host" env:"WORDSAPI_HOST" env-default:"wordsapiv1.p.rapidapi.com"`
	QuotaHeader string        `yaml:"quota_header" env:"WORDSAPI_QUOTA_HEADER" env-default:"X-RateLimit-Requests-Remaining"`
	Timeout     time.Duration `yaml:"timeout" env:"WORDSAPI_TIMEOUT" env-default:"10s" validate:"min=0"`
	// RequestsPerSecond paces lookups; 0 disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"WORDSAPI_RPS" env-default:"0" validate:"gte=0"`
	APIKey            string  `yaml:"-" env:"WORDSAPI_KEY"` // Secret - not in YAML
}

// QuotaConfig selects when a run stops issuing lookups.
type QuotaConfig struct {
	// Mode is "threshold" or "unlimited".
	Mode string `yaml:"mode" env:"WORDFILTER_QUOTA_MODE" env-default:"threshold" validate:"oneof=threshold unlimited"`
	// Ceiling is the service's per-window allowance.
	Ceiling int `yaml:"ceiling" env:"WORDFILTER_QUOTA_CEILING" env-default:"2500" validate:"gte=0"`
	// Threshold halts once remaining drops below it; 0 uses Ceiling.
	Threshold int `yaml:"threshold" env:"WORDFILTER_QUOTA_THRESHOLD" env-default:"0" validate:"gte=0"`
}

// Min is the remaining-quota floor the threshold policy enforces.
func (q QuotaConfig) Min() int {
	if q.Threshold > 0 {
		return q.Threshold
	}
	return q.Ceiling
}

// Load reads path when it exists and then applies the environment, which
// always wins. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
