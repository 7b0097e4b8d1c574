// Package config holds the phascan configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/revelaction/phascan/retry"
)

// Config is the phascan configuration.
type Config struct {
	Rules     RulesConfig     `yaml:"rules"`
	Parser    ParserConfig    `yaml:"parser"`
	Translate TranslateConfig `yaml:"translate"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Apktool   ApktoolConfig   `yaml:"apktool"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RulesConfig locates the category rule table. An empty path selects the
// embedded default table; a .db path a sqlite rule store.
type RulesConfig struct {
	Path string `yaml:"path"`
}

type ParserConfig struct {
	URL     string `yaml:"url" validate:"required,url"`
	Timeout string `yaml:"timeout"`
	Retries int    `yaml:"retries" validate:"gte=0"`
	Backoff string `yaml:"backoff"`

	// Cache is a sqlite file or a directory caching parses by text.
	Cache string `yaml:"cache"`
}

type TranslateConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url" validate:"omitempty,url"`
	APIKey  string `yaml:"api_key"`
	Source  string `yaml:"source"`
	Target  string `yaml:"target"`
	Timeout string `yaml:"timeout"`
	Retries int    `yaml:"retries" validate:"gte=0"`
	Backoff string `yaml:"backoff"`

	// RateLimit caps the requests per second, zero for no limit.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
}

type PipelineConfig struct {
	Workers            int `yaml:"workers" validate:"gte=1"`
	DescriptionWorkers int `yaml:"description_workers" validate:"gte=1"`
}

type ApktoolConfig struct {
	Path    string `yaml:"path"`
	Timeout string `yaml:"timeout"`
}

// StoreConfig is the sqlite report store. Empty disables storing reports.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

const (
	defaultTimeout        = 30 * time.Second
	defaultBackoff        = 200 * time.Millisecond
	defaultApktoolTimeout = 2 * time.Minute
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{
			URL:     "http://localhost:8080",
			Timeout: "30s",
			Retries: 2,
			Backoff: "200ms",
		},
		Translate: TranslateConfig{
			Enabled: true,
			URL:     "http://localhost:5000",
			Source:  "auto",
			Target:  "en",
			Timeout: "30s",
			Retries: 2,
			Backoff: "200ms",
		},
		Pipeline: PipelineConfig{
			Workers:            4,
			DescriptionWorkers: 2,
		},
		Apktool: ApktoolConfig{
			Path:    "apktool",
			Timeout: "2m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override the file in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PHASCAN_RULES"); path != "" {
		c.Rules.Path = path
	}
	if url := os.Getenv("PHASCAN_PARSER_URL"); url != "" {
		c.Parser.URL = url
	}
	if url := os.Getenv("PHASCAN_TRANSLATE_URL"); url != "" {
		c.Translate.URL = url
	}
	if key := os.Getenv("PHASCAN_TRANSLATE_API_KEY"); key != "" {
		c.Translate.APIKey = key
	}
	if path := os.Getenv("PHASCAN_STORE"); path != "" {
		c.Store.Path = path
	}
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid %s: %v does not satisfy %s", fieldPath(verrs[0]), verrs[0].Value(), constraint(verrs[0]))
		}
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// validate names fields by their yaml keys.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return v
}()

// fieldPath turns "Config.pipeline.workers" into "pipeline.workers".
func fieldPath(fe validator.FieldError) string {
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	return path
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// ParserPolicy returns the retry policy of parser calls.
func (c *Config) ParserPolicy() retry.Policy {
	return retry.Policy{
		Retries: c.Parser.Retries,
		Timeout: duration(c.Parser.Timeout, defaultTimeout),
		Backoff: duration(c.Parser.Backoff, defaultBackoff),
	}
}

// TranslatePolicy returns the retry policy of translation calls.
func (c *Config) TranslatePolicy() retry.Policy {
	return retry.Policy{
		Retries: c.Translate.Retries,
		Timeout: duration(c.Translate.Timeout, defaultTimeout),
		Backoff: duration(c.Translate.Backoff, defaultBackoff),
	}
}

// GetApktoolTimeout returns the apktool timeout as a duration.
func (c *Config) GetApktoolTimeout() time.Duration {
	return duration(c.Apktool.Timeout, defaultApktoolTimeout)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
