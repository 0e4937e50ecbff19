package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.yaml", `
http:
  addr: "0.0.0.0:9000"
logging:
  level: debug
  console: true
storage:
  path: ./plan.db
  busy_timeout: 2s
auth:
  app_url: https://plan.example.com
  service_key: sk-test
  invite_ttl: 72h
plan:
  week_target_hours: 38.5
maintenance:
  schedule: "@every 30m"
`)

	m := NewConfigManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Addr != "0.0.0.0:9000" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Auth.AppURL != "https://plan.example.com" {
		t.Errorf("Auth.AppURL = %q", cfg.Auth.AppURL)
	}

	ttl, err := cfg.Auth.InviteTTLOrDefault()
	if err != nil || ttl.Hours() != 72 {
		t.Errorf("InviteTTL = %v, %v", ttl, err)
	}
	if cfg.Plan.WeekTargetOrDefault() != 38.5 {
		t.Errorf("WeekTarget = %v", cfg.Plan.WeekTargetOrDefault())
	}
	if cfg.Maintenance.ScheduleOrDefault() != "@every 30m" {
		t.Errorf("Schedule = %q", cfg.Maintenance.ScheduleOrDefault())
	}
	if got := m.Get(); got != cfg {
		t.Error("Get() did not return committed config")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.yaml", "bogus_section:\n  x: 1\n")
	if _, err := NewConfigManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown section")
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.json", `{"auth":{"app_url":"http://x","service_key":"k"}}`)
	cfg, err := NewConfigManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.AddrOrDefault() != DefaultAddr {
		t.Errorf("AddrOrDefault = %q", cfg.HTTP.AddrOrDefault())
	}
	if cfg.Storage.PathOrDefault() != DefaultStoragePath {
		t.Errorf("PathOrDefault = %q", cfg.Storage.PathOrDefault())
	}
	if ttl, _ := cfg.Auth.SessionTTLOrDefault(); ttl != DefaultSessionTTL {
		t.Errorf("SessionTTL = %v", ttl)
	}
	if cfg.Auth.LoginRateOrDefault() != DefaultLoginPerMin {
		t.Errorf("LoginRate = %d", cfg.Auth.LoginRateOrDefault())
	}
	if !cfg.Maintenance.IsEnabled() {
		t.Error("maintenance should default to enabled")
	}
	if cfg.Plan.WeekTargetOrDefault() != 40 {
		t.Errorf("WeekTarget = %v", cfg.Plan.WeekTargetOrDefault())
	}
}
