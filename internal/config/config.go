// Package config provides configuration management for execprobe using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jmylchreest/execprobe/internal/urlutil"
	"github.com/jmylchreest/execprobe/internal/version"
)

// EnvPrefix is the prefix for environment variable overrides.
// Example: api.key -> EXECPROBE_API_KEY.
const EnvPrefix = "EXECPROBE"

// PlaceholderAPIKey is the built-in key value. A run whose resolved key is
// empty or equal to this value is refused.
const PlaceholderAPIKey = "your-api-key"

// Default configuration values.
const (
	defaultExecuteURL      = "https://code.pylearn.net/execute"
	defaultOrigin          = "https://pylearn.net"
	defaultLanguage        = "python"
	defaultExecTimeout     = 5
	defaultMaxResponseSize = ByteSize(10 * 1024 * 1024)
)

// Color modes for console output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all configuration for the application.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Cases   CasesConfig   `mapstructure:"cases"`
	Run     RunConfig     `mapstructure:"run"`
}

// APIConfig describes the code-execution API under test.
type APIConfig struct {
	ExecuteURL string `mapstructure:"execute_url"`
	HealthURL  string `mapstructure:"health_url"` // empty = derived from execute_url
	Key        string `mapstructure:"key"`
	Origin     string `mapstructure:"origin"`
	Language   string `mapstructure:"language"`
	Timeout    int    `mapstructure:"timeout"` // seconds, sent to the server in each payload
}

// HTTPConfig holds client-side transport settings.
type HTTPConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"` // 0 = no client timeout
	MaxResponseSize ByteSize      `mapstructure:"max_response_size"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text, pretty
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// OutputConfig controls console rendering of results.
type OutputConfig struct {
	Color string `mapstructure:"color"` // auto, always, never
}

// CasesConfig selects where test cases come from.
type CasesConfig struct {
	File string `mapstructure:"file"` // empty = built-in cases
}

// RunConfig controls the run's exit status.
type RunConfig struct {
	Strict bool `mapstructure:"strict"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if err := ReadInto(v, configPath); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// ReadInto prepares v with defaults, the config file (if any) and the
// environment. A missing config file is not an error.
func ReadInto(v *viper.Viper, configPath string) error {
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".execprobe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.API.ExecuteURL = urlutil.NormalizeBaseURL(cfg.API.ExecuteURL)
	cfg.API.HealthURL = urlutil.NormalizeBaseURL(cfg.API.HealthURL)

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	cfg.Output.Color = strings.ToLower(cfg.Output.Color)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.execute_url", defaultExecuteURL)
	v.SetDefault("api.health_url", "")
	v.SetDefault("api.key", PlaceholderAPIKey)
	v.SetDefault("api.origin", defaultOrigin)
	v.SetDefault("api.language", defaultLanguage)
	v.SetDefault("api.timeout", defaultExecTimeout)

	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("http.max_response_size", defaultMaxResponseSize)
	v.SetDefault("http.user_agent", version.UserAgent())

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("output.color", ColorAuto)
	v.SetDefault("cases.file", "")
	v.SetDefault("run.strict", false)
}

// Validate checks the configuration for errors. The API key is not checked
// here; the command line may still supply it.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.ExecuteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.execute_url must be an absolute URL, got %q", c.API.ExecuteURL)
	}
	if c.API.HealthURL != "" {
		hu, err := url.Parse(c.API.HealthURL)
		if err != nil || hu.Scheme == "" || hu.Host == "" {
			return fmt.Errorf("api.health_url must be an absolute URL, got %q", c.API.HealthURL)
		}
	}
	if c.API.Language == "" {
		return fmt.Errorf("api.language is required")
	}
	if c.API.Timeout < 1 {
		return fmt.Errorf("api.timeout must be at least 1 second")
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if c.HTTP.MaxResponseSize < 0 {
		return fmt.Errorf("http.max_response_size must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true, "pretty": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text, pretty")
	}

	validColors := map[string]bool{ColorAuto: true, ColorAlways: true, ColorNever: true}
	if !validColors[c.Output.Color] {
		return fmt.Errorf("output.color must be one of: auto, always, never")
	}

	return nil
}

// HasUsableKey reports whether the API key is set to something other than
// the placeholder.
func (c *APIConfig) HasUsableKey() bool {
	key := strings.TrimSpace(c.Key)
	return key != "" && key != PlaceholderAPIKey
}
