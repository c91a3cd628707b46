package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewViperLoader("", "SABORMAP_TEST0").Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.RouterType != "gin" {
		t.Fatalf("expected gin router by default, got %q", cfg.RouterType)
	}
	if cfg.HTTP.Port != 8080 || cfg.Management.Port != 9090 {
		t.Fatalf("unexpected default ports: %d %d", cfg.HTTP.Port, cfg.Management.Port)
	}
	if cfg.Database.MongoDB.Database != "sabormap" {
		t.Fatalf("unexpected default database: %q", cfg.Database.MongoDB.Database)
	}
	if cfg.Observability.Log.Level != "info" || cfg.Observability.Log.Format != "json" {
		t.Fatalf("unexpected default log config: %+v", cfg.Observability.Log)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SABORMAP_TEST1_HTTP_PORT", "8181")
	t.Setenv("SABORMAP_TEST1_MONGODB_URL", "mongodb://db.internal:27017")
	t.Setenv("SABORMAP_TEST1_LOG_LEVEL", "debug")
	t.Setenv("SABORMAP_TEST1_RATE_LIMIT_ENABLED", "true")
	t.Setenv("SABORMAP_TEST1_RATE_LIMIT_RPS", "50")
	t.Setenv("SABORMAP_TEST1_RATE_LIMIT_BURST", "80")

	cfg, err := NewViperLoader("", "SABORMAP_TEST1").Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Port != 8181 {
		t.Fatalf("env port override not applied: %d", cfg.HTTP.Port)
	}
	if cfg.Database.MongoDB.URL != "mongodb://db.internal:27017" {
		t.Fatalf("env url override not applied: %q", cfg.Database.MongoDB.URL)
	}
	if cfg.Observability.Log.Level != "debug" {
		t.Fatalf("env log level override not applied: %q", cfg.Observability.Log.Level)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerSecond != 50 || cfg.RateLimit.Burst != 80 {
		t.Fatalf("env rate limit overrides not applied: %+v", cfg.RateLimit)
	}
}

func TestLoadFromFileWithEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("http:\n  port: 8282\nservice:\n  name: catalogo\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SABORMAP_TEST2_HTTP_PORT", "8383")

	cfg, err := NewViperLoader(path, "SABORMAP_TEST2").Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Service.Name != "catalogo" {
		t.Fatalf("file value not applied: %q", cfg.Service.Name)
	}
	if cfg.HTTP.Port != 8383 {
		t.Fatalf("env must take precedence over file, got %d", cfg.HTTP.Port)
	}
}

func TestValidateRejections(t *testing.T) {
	loader := NewViperLoader("", "SABORMAP_TEST3")

	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"http port 0", func(cfg *Config) { cfg.HTTP.Port = 0 }},
		{"management port clash", func(cfg *Config) { cfg.Management.Port = cfg.HTTP.Port }},
		{"empty mongodb url", func(cfg *Config) { cfg.Database.MongoDB.URL = " " }},
		{"empty mongodb database", func(cfg *Config) { cfg.Database.MongoDB.Database = "" }},
		{"negative connect timeout", func(cfg *Config) { cfg.Database.MongoDB.ConnectTimeout = -1 }},
		{"bad log level", func(cfg *Config) { cfg.Observability.Log.Level = "verbose" }},
		{"bad log format", func(cfg *Config) { cfg.Observability.Log.Format = "xml" }},
		{"tracing without endpoint", func(cfg *Config) {
			cfg.Observability.Tracing.Enabled = true
			cfg.Observability.Tracing.Endpoint = ""
		}},
		{"sample rate out of range", func(cfg *Config) {
			cfg.Observability.Tracing.Enabled = true
			cfg.Observability.Tracing.SampleRate = 1.5
		}},
		{"burst below rps", func(cfg *Config) {
			cfg.RateLimit.Enabled = true
			cfg.RateLimit.RequestsPerSecond = 100
			cfg.RateLimit.Burst = 10
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := loader.Validate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := NewViperLoader("", "SABORMAP_TEST4").Validate(DefaultConfig()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := NewViperLoader("/nonexistent/config.yaml", "SABORMAP_TEST5").Load()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
