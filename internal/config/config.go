// Package config provides configuration loading and validation for the CLI and web front end.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/cover-letter-generator/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultAPIURL is the generation API base URL used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000/api"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COVERLETTER"

// Config represents the merged configuration.
// Values come from defaults, an optional config file, COVERLETTER_* environment variables and CLI flags,
// in increasing order of precedence.
type Config struct {
	APIURL      string          `mapstructure:"api_url"`      // Base URL of the generation API
	LogLevel    string          `mapstructure:"log_level"`    // debug, info, warn, error
	LogFormat   string          `mapstructure:"log_format"`   // console or json
	ListenAddr  string          `mapstructure:"listen_addr"`  // Web front end listen address
	DownloadDir string          `mapstructure:"download_dir"` // Where CLI exports are written
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Mock        MockConfig      `mapstructure:"mock"`
}

// RateLimitConfig limits form submissions per client on the web front end.
type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"per_minute"`
	Burst     int  `mapstructure:"burst"`
}

// MockConfig configures the local mock backend.
type MockConfig struct {
	ListenAddr string        `mapstructure:"listen_addr"`
	Latency    time.Duration `mapstructure:"latency"`
}

// flagKeys maps config keys to the CLI flags that may override them.
var flagKeys = map[string]string{
	"api_url":               "api-url",
	"log_level":             "log-level",
	"log_format":            "log-format",
	"listen_addr":           "listen",
	"download_dir":          "out",
	"rate_limit.per_minute": "rate-limit",
	"mock.listen_addr":      "mock-listen",
	"mock.latency":          "latency",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", logging.FormatConsole)
	v.SetDefault("listen_addr", ":5173")
	v.SetDefault("download_dir", ".")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.per_minute", 10)
	v.SetDefault("rate_limit.burst", 3)
	v.SetDefault("mock.listen_addr", ":8000")
	v.SetDefault("mock.latency", 0)
}

// Load reads configuration from path (optional), the environment and flags.
// When path is empty, a coverletter.{yaml,json,toml} file in the working directory
// or ~/.config/coverletter is used if present.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("coverletter")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/coverletter")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// VITE_API_URL is what the browser client reads its backend from.
	if err := v.BindEnv("api_url", EnvPrefix+"_API_URL", "VITE_API_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind api_url env: %w", err)
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file, env or flag is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config error: 'api_url' must be an http(s) URL, got %q", c.APIURL)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.LogFormat != logging.FormatConsole && c.LogFormat != logging.FormatJSON {
		return fmt.Errorf("config error: 'log_format' must be console or json, got %q", c.LogFormat)
	}

	if c.DownloadDir == "" {
		return fmt.Errorf("config error: 'download_dir' must not be empty")
	}

	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("config error: 'rate_limit.per_minute' must be non-negative")
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("config error: 'rate_limit.burst' must be non-negative")
	}
	if c.Mock.Latency < 0 {
		return fmt.Errorf("config error: 'mock.latency' must be non-negative")
	}

	return nil
}
