package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL      string `mapstructure:"API_BASE_URL"`
	Env             string `mapstructure:"ENV"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	SessionFile     string `mapstructure:"SESSION_FILE"`
	HTTPTimeoutSecs int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	RenewWindowMins int    `mapstructure:"RENEW_WINDOW_MINUTES"`
	ExpiryCheckSecs int    `mapstructure:"EXPIRY_CHECK_SECONDS"`
	DebounceMillis  int    `mapstructure:"DEBOUNCE_MS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("RENEW_WINDOW_MINUTES", 5)
	v.SetDefault("EXPIRY_CHECK_SECONDS", 60)
	v.SetDefault("DEBOUNCE_MS", 500)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("API_BASE_URL")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("SESSION_FILE")
	v.BindEnv("HTTP_TIMEOUT_SECONDS")
	v.BindEnv("RENEW_WINDOW_MINUTES")
	v.BindEnv("EXPIRY_CHECK_SECONDS")
	v.BindEnv("DEBOUNCE_MS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: running in development mode (ENV=development); requests are logged verbosely")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HTTPTimeout returns the per-request timeout for the underlying HTTP client.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

// RenewWindow returns how close to expiry a token may get before the gateway
// renews it proactively.
func (c *Config) RenewWindow() time.Duration {
	return time.Duration(c.RenewWindowMins) * time.Minute
}

// ExpiryCheckInterval returns how often the background expiry watch polls the
// stored token.
func (c *Config) ExpiryCheckInterval() time.Duration {
	return time.Duration(c.ExpiryCheckSecs) * time.Second
}

// DebounceDelay returns the autocomplete search debounce delay.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

// Validate checks that the configuration is safe to run with. The base URL
// must parse as an absolute http(s) URL and every tunable must be positive.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.HTTPTimeoutSecs <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeoutSecs)
	}
	if c.RenewWindowMins <= 0 {
		return fmt.Errorf("RENEW_WINDOW_MINUTES must be positive, got %d", c.RenewWindowMins)
	}
	if c.ExpiryCheckSecs <= 0 {
		return fmt.Errorf("EXPIRY_CHECK_SECONDS must be positive, got %d", c.ExpiryCheckSecs)
	}
	if c.DebounceMillis <= 0 {
		return fmt.Errorf("DEBOUNCE_MS must be positive, got %d", c.DebounceMillis)
	}
	if c.SessionFile == "" {
		return fmt.Errorf("SESSION_FILE is required")
	}
	return nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sigh-session.json"
	}
	return filepath.Join(home, ".sigh", "session.json")
}
