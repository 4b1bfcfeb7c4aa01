package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"weather-viewer/datasource"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Forecast target
	City          string `mapstructure:"CITY"`
	LocationLabel string `mapstructure:"LOCATION_LABEL"`
	Units         string `mapstructure:"UNITS"`

	// OpenWeatherMap access
	APIKey  string `mapstructure:"OPENWEATHERMAP_API_KEY"`
	BaseURL string `mapstructure:"OPENWEATHERMAP_BASE_URL"`

	// FetchTimeout bounds a single fetch; zero keeps the transport default
	FetchTimeout time.Duration `mapstructure:"FETCH_TIMEOUT"`

	// Rate limiting for on-demand refreshes; RateLimitRPS <= 0 disables it
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	Port           int    `mapstructure:"PORT"`
	ZipkinEndpoint string `mapstructure:"ZIPKIN_ENDPOINT"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogDevelopment bool   `mapstructure:"LOG_DEVELOPMENT"`
}

var defaults = map[string]any{
	"CITY":                    "Moscow",
	"LOCATION_LABEL":          "Moscow, Russia",
	"UNITS":                   datasource.DefaultUnits,
	"OPENWEATHERMAP_API_KEY":  "",
	"OPENWEATHERMAP_BASE_URL": datasource.DefaultBaseURL,
	"FETCH_TIMEOUT":           "0s",
	"RATE_LIMIT_RPS":          1.0,
	"RATE_LIMIT_BURST":        5,
	"PORT":                    8080,
	"ZIPKIN_ENDPOINT":         "",
	"LOG_LEVEL":               "info",
	"LOG_DEVELOPMENT":         false,
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	cfg, err := load(newViper())
	if err != nil {
		// defaults are static and always decode
		panic(err)
	}
	return cfg
}

// Load reads configuration from path (json, yaml, toml or env, by extension)
// and the environment. Environment variables win over the file. A missing
// file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Units = strings.ToLower(strings.TrimSpace(cfg.Units))
	return &cfg, nil
}

// Validate checks the settings a forecast fetch depends on
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.City) == "" {
		errs = append(errs, errors.New("CITY must not be empty"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("OPENWEATHERMAP_API_KEY must be set"))
	}
	if !datasource.ValidUnits(c.Units) {
		errs = append(errs, fmt.Errorf("UNITS must be one of metric, imperial or standard, got %q", c.Units))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled"))
	}
	return errors.Join(errs...)
}
