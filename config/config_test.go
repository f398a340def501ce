package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/metersplit/metersplit/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metersplit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "metersplit.db" {
		t.Errorf("database defaults = %+v", cfg.Database)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics path default = %q", cfg.Metrics.Path)
	}
	if cfg.Tariff != nil {
		t.Error("no tariff seed expected by default")
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 5s
database:
  driver: sqlite
  dsn: /tmp/bills.db
admin:
  api_key: secret-key
logging:
  level: debug
  format: console
metrics:
  enabled: true
tariff:
  slabs:
    - {limit: 50, rate: 4}
    - {limit: 100, rate: 5}
  vat_rate: 0.05
  demand_charge: 100
  meter_rent: 50
  bkash_charge: 10
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Admin.APIKey != "secret-key" {
		t.Errorf("admin key = %q", cfg.Admin.APIKey)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled")
	}
	if cfg.Tariff == nil || len(cfg.Tariff.Slabs) != 2 || cfg.Tariff.VATRate != 0.05 {
		t.Errorf("tariff seed = %+v", cfg.Tariff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("METERSPLIT_SERVER_PORT", "7070")
	t.Setenv("METERSPLIT_LOG_LEVEL", "debug")
	t.Setenv("METERSPLIT_ADMIN_API_KEY", "from-env")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, env must win over file", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" || cfg.Admin.APIKey != "from-env" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad driver", "database:\n  driver: oracle\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad port", "server:\n  port: 99999\n"},
		{"bad tariff seed", "tariff:\n  slabs:\n    - {limit: 100, rate: 5}\n    - {limit: 50, rate: 4}\n"},
		{"not yaml", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := config.Load(path); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestLoadWithFallback(t *testing.T) {
	// Missing file falls back to env-only config.
	t.Setenv("METERSPLIT_SERVER_PORT", "6060")
	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("port = %d, want env value", cfg.Server.Port)
	}
}
