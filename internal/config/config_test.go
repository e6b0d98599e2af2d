package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fragcheck.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
server:
  bind: "0.0.0.0:9090"
  read_timeout: 5s
fragment:
  base_url: "https://fragment.example"
  attempts: 5
  retry_delay: 500ms
watch:
  enabled: true
  usernames: [gold, silver]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Server.Bind != "0.0.0.0:9090" {
		t.Errorf("Server.Bind = %q, want %q", cfg.Server.Bind, "0.0.0.0:9090")
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Fragment.BaseURL != "https://fragment.example" {
		t.Errorf("Fragment.BaseURL = %q, want override", cfg.Fragment.BaseURL)
	}
	if cfg.Fragment.Attempts != 5 {
		t.Errorf("Fragment.Attempts = %d, want 5", cfg.Fragment.Attempts)
	}
	if cfg.Fragment.RetryDelay != 500*time.Millisecond {
		t.Errorf("Fragment.RetryDelay = %v, want 500ms", cfg.Fragment.RetryDelay)
	}
	if !cfg.Watch.Enabled {
		t.Error("Watch.Enabled = false, want true")
	}
	if len(cfg.Watch.Usernames) != 2 {
		t.Errorf("Watch.Usernames = %v, want two entries", cfg.Watch.Usernames)
	}

	// Unset fields fall back to defaults.
	if cfg.Telegram.BaseURL != "https://t.me" {
		t.Errorf("Telegram.BaseURL = %q, want default", cfg.Telegram.BaseURL)
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want default 60s", cfg.Server.WriteTimeout)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("FRAGCHECK_TEST_BIND", "127.0.0.1:7070")

	path := writeConfig(t, `
server:
  bind: "${FRAGCHECK_TEST_BIND}"
fragment:
  base_url: "${FRAGCHECK_TEST_BASE:-https://fragment.com}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Bind != "127.0.0.1:7070" {
		t.Errorf("Server.Bind = %q, want env value", cfg.Server.Bind)
	}
	if cfg.Fragment.BaseURL != "https://fragment.com" {
		t.Errorf("Fragment.BaseURL = %q, want fallback default", cfg.Fragment.BaseURL)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
server:
  bind: "${FRAGCHECK_TEST_DOES_NOT_EXIST}"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() = nil error, want unresolved variable failure")
	}
	if !strings.Contains(err.Error(), "FRAGCHECK_TEST_DOES_NOT_EXIST") {
		t.Errorf("error = %v, want variable name", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() = nil error, want read failure")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(*Config) {}},
		{
			name:    "bad bind address",
			mutate:  func(c *Config) { c.Server.Bind = "not-an-addr" },
			wantErr: true,
		},
		{
			name:    "non-http fragment url",
			mutate:  func(c *Config) { c.Fragment.BaseURL = "ftp://fragment.com" },
			wantErr: true,
		},
		{
			name:    "too many attempts",
			mutate:  func(c *Config) { c.Fragment.Attempts = 50 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var cfg Config
			cfg.Defaults()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("Validate() = nil error, want failure")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
		})
	}
}
