// Package app provides application-level configuration and initialization.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lazyvibe/tgauto/internal/model"
)

const (
	defaultCountry      = "Russia"
	defaultAccounts     = 1
	defaultPollInterval = 5 * time.Second
	defaultPollTimeout  = 10 * time.Minute
	defaultStopGrace    = 10 * time.Second
	defaultLogLevel     = "info"
)

// Duration is a time.Duration stored as a Go duration string ("5s") in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Config holds the application configuration.
type Config struct {
	// APIKey is the SMS-activation service credential.
	APIKey string `json:"api_key"`
	// BaseURL overrides the service endpoint (optional).
	BaseURL string `json:"base_url,omitempty"`
	// Country is the catalog name of the country to request numbers for.
	Country string `json:"country"`
	// Accounts is the number of accounts one run attempts.
	Accounts     int      `json:"accounts"`
	Verification bool     `json:"verification"`
	PollInterval Duration `json:"poll_interval"`
	// PollTimeout bounds the wait for one verification code.
	PollTimeout Duration `json:"poll_timeout"`
	// StopGrace bounds how long a stopped task may keep running. Zero disables the watchdog.
	StopGrace    Duration                 `json:"stop_grace"`
	LogLevel     string                   `json:"log_level"`
	LogFile      string                   `json:"log_file,omitempty"`
	Notification model.NotificationConfig `json:"notification"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Country:      defaultCountry,
		Accounts:     defaultAccounts,
		Verification: true,
		PollInterval: Duration(defaultPollInterval),
		PollTimeout:  Duration(defaultPollTimeout),
		StopGrace:    Duration(defaultStopGrace),
		LogLevel:     defaultLogLevel,
	}
}

// Initialized reports whether first-run setup has stored a credential.
func (c *Config) Initialized() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Validate checks values that would make a run meaningless.
func (c *Config) Validate() error {
	var errs []error
	if c.Accounts < 0 {
		errs = append(errs, fmt.Errorf("accounts must not be negative, got %d", c.Accounts))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", time.Duration(c.PollInterval)))
	}
	if c.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("poll_timeout must not be negative, got %s", time.Duration(c.PollTimeout)))
	}
	if c.StopGrace < 0 {
		errs = append(errs, fmt.Errorf("stop_grace must not be negative, got %s", time.Duration(c.StopGrace)))
	}
	return errors.Join(errs...)
}

// ConfigPath returns the path to the config file.
func ConfigPath(configDir string) string {
	return filepath.Join(configDir, "config.json")
}

// LoadConfig loads the configuration from disk.
func LoadConfig(configDir string) (*Config, error) {
	path := ConfigPath(configDir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to disk.
func SaveConfig(configDir string, config *Config) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// The file holds the service credential.
	return os.WriteFile(ConfigPath(configDir), data, 0o600)
}

// Load reads the config file and applies .env and TGAUTO_* overrides.
// Priority: environment > .env file > config file > defaults.
func Load(configDir string) (*Config, error) {
	cfg, err := LoadConfig(configDir)
	if err != nil {
		return nil, err
	}

	// .env files are optional; godotenv never overrides variables already set.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with TGAUTO_* environment variables.
func ApplyEnv(cfg *Config) {
	cfg.APIKey = getEnvString("TGAUTO_API_KEY", cfg.APIKey)
	cfg.BaseURL = getEnvString("TGAUTO_BASE_URL", cfg.BaseURL)
	cfg.Country = getEnvString("TGAUTO_COUNTRY", cfg.Country)
	cfg.Accounts = getEnvInt("TGAUTO_ACCOUNTS", cfg.Accounts)
	cfg.Verification = getEnvBool("TGAUTO_VERIFICATION", cfg.Verification)
	cfg.PollInterval = Duration(getEnvDuration("TGAUTO_POLL_INTERVAL", time.Duration(cfg.PollInterval)))
	cfg.PollTimeout = Duration(getEnvDuration("TGAUTO_POLL_TIMEOUT", time.Duration(cfg.PollTimeout)))
	cfg.StopGrace = Duration(getEnvDuration("TGAUTO_STOP_GRACE", time.Duration(cfg.StopGrace)))
	cfg.LogLevel = getEnvString("TGAUTO_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnvString("TGAUTO_LOG_FILE", cfg.LogFile)
	cfg.Notification.Desktop = getEnvBool("TGAUTO_DESKTOP_NOTIFY", cfg.Notification.Desktop)
	cfg.Notification.WebhookURL = getEnvString("TGAUTO_WEBHOOK_URL", cfg.Notification.WebhookURL)
}

// getEnvString returns the environment variable value or default
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt returns the environment variable as int or default
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvBool returns the environment variable as bool or default
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns the environment variable as duration or default
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return defaultVal
}
