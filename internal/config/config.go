// Package config handles YAML configuration loading, environment variable
// expansion, and validation for fragcheck.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Config is the top-level configuration structure.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Server   ServerConfig   `yaml:"server"`
	Fragment FragmentConfig `yaml:"fragment"`
	Telegram TelegramConfig `yaml:"telegram"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds the HTTP gateway settings.
type ServerConfig struct {
	Bind            string        `yaml:"bind"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// FragmentConfig holds marketplace probe settings.
type FragmentConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Attempts   int           `yaml:"attempts"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// TelegramConfig holds profile-page probe settings.
type TelegramConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WatchConfig lists usernames re-checked on a cron schedule.
type WatchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Schedule  string   `yaml:"schedule"`
	Usernames []string `yaml:"usernames"`
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Bind == "" {
		c.Server.Bind = "127.0.0.1:8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Fragment.BaseURL == "" {
		c.Fragment.BaseURL = "https://fragment.com"
	}
	if c.Fragment.Timeout <= 0 {
		c.Fragment.Timeout = 15 * time.Second
	}
	if c.Fragment.Attempts <= 0 {
		c.Fragment.Attempts = 3
	}
	if c.Fragment.RetryDelay <= 0 {
		c.Fragment.RetryDelay = 1500 * time.Millisecond
	}
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://t.me"
	}
	if c.Telegram.Timeout <= 0 {
		c.Telegram.Timeout = 10 * time.Second
	}
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = "*/15 * * * *"
	}
}

// Load reads a YAML configuration file, expands environment variables,
// parses it, and applies defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.Defaults()
	return &cfg, nil
}

// Validate checks field constraints after defaults have been applied.
func (c *Config) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", c.Server.Bind); err != nil {
		return fmt.Errorf("config: invalid bind address %q", c.Server.Bind)
	}
	for name, raw := range map[string]string{
		"fragment.base_url": c.Fragment.BaseURL,
		"telegram.base_url": c.Telegram.BaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("config: %s must be a valid http/https URL, got %q", name, raw)
		}
	}
	if c.Fragment.Attempts > 10 {
		return fmt.Errorf("config: fragment.attempts must be 1-10, got %d", c.Fragment.Attempts)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil
		defaultVal := ""
		if hasDefault {
			defaultVal = string(subs[2])
		}

		value, ok := os.LookupEnv(name)
		if ok {
			return []byte(value)
		}

		if hasDefault {
			return []byte(defaultVal)
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}
