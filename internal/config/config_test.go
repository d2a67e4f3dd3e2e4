package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	cfg := AppConfig
	if cfg.Role != "seeker" || cfg.SortOrder != "desc" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.PollInterval != 30*time.Second || cfg.RequestTimeout != 10*time.Second {
		t.Errorf("unexpected durations %v %v", cfg.PollInterval, cfg.RequestTimeout)
	}
	if cfg.EnrichConcurrency != 4 {
		t.Errorf("EnrichConcurrency = %d", cfg.EnrichConcurrency)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `api_base_url: https://jobs.example.com/api
role: recruiter
user_id: rec-42
poll_interval: 45s
sort_order: asc
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := AppConfig
	if cfg.APIBaseURL != "https://jobs.example.com/api" || cfg.Role != "recruiter" || cfg.UserID != "rec-42" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.PollInterval != 45*time.Second || cfg.SortOrder != "asc" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("missing keys should fall back to defaults, got %v", cfg.RequestTimeout)
	}
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("APPLYTRACK_API_TOKEN", "secret-token")
	t.Setenv("APPLYTRACK_ROLE", "recruiter")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if AppConfig.APIToken != "secret-token" || AppConfig.Role != "recruiter" {
		t.Errorf("env overrides not applied: %+v", AppConfig)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Role: "seeker", SortOrder: "desc", PollInterval: time.Second, RequestTimeout: time.Second, EnrichConcurrency: 1}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad role", mutate: func(c *Config) { c.Role = "admin" }},
		{name: "bad sort", mutate: func(c *Config) { c.SortOrder = "random" }},
		{name: "zero interval", mutate: func(c *Config) { c.PollInterval = 0 }},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }},
		{name: "zero concurrency", mutate: func(c *Config) { c.EnrichConcurrency = 0 }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Set("openai_key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := Set("user_id", "seeker-7"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := Get("user_id"); got != "seeker-7" {
		t.Errorf("Get(user_id) = %q", got)
	}
	if AppConfig.UserID != "seeker-7" {
		t.Errorf("UserID = %q after Set", AppConfig.UserID)
	}
}
