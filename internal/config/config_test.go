package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.WebDir != "web" {
		t.Errorf("unexpected addr/web dir %q %q", cfg.Addr, cfg.WebDir)
	}
	if cfg.Charts.WindowDays != 28 || cfg.Charts.GoalWeightLb != 155 {
		t.Errorf("unexpected chart defaults %+v", cfg.Charts)
	}
	if cfg.Location != time.UTC {
		t.Errorf("expected UTC, got %v", cfg.Location)
	}
	if cfg.DatabaseURL != "" || cfg.SSOEnabled() || cfg.ForwardAuth {
		t.Error("database, sso and forward auth should be off by default")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	if _, err := time.LoadLocation("America/Chicago"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	path := writeYAML(t, `
addr: ":9000"
timezone: America/Chicago
charts:
  window_days: 14
  goal_weight_lb: 170
breaker:
  timeout: 1m
`)
	t.Setenv("ADDR", ":9100")
	t.Setenv("GOAL_WEIGHT_LB", "160.5")
	t.Setenv("BREAKER_MAX_RETRIES", "4")
	t.Setenv("FORWARD_AUTH", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Errorf("env should override file, got %q", cfg.Addr)
	}
	if cfg.Charts.WindowDays != 14 || cfg.Charts.GoalWeightLb != 160.5 {
		t.Errorf("unexpected charts %+v", cfg.Charts)
	}
	if cfg.Location.String() != "America/Chicago" {
		t.Errorf("location = %v", cfg.Location)
	}
	if cfg.Breaker.Timeout != time.Minute {
		t.Errorf("breaker timeout = %v", cfg.Breaker.Timeout)
	}
	if !cfg.ForwardAuth {
		t.Error("FORWARD_AUTH=true should enable forward auth")
	}
	if cfg.Breaker.MaxRetries != 4 || cfg.Breaker.Failures != 5 {
		t.Errorf("unexpected breaker %+v", cfg.Breaker)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad window", map[string]string{"WINDOW_DAYS": "zero"}, "WINDOW_DAYS"},
		{"window out of range", map[string]string{"WINDOW_DAYS": "-3"}, "window_days"},
		{"bad breaker timeout", map[string]string{"BREAKER_TIMEOUT": "soon"}, "BREAKER_TIMEOUT"},
		{"bad forward auth", map[string]string{"FORWARD_AUTH": "maybe"}, "FORWARD_AUTH"},
		{"bad cron", map[string]string{"REFRESH_CRON": "every minute"}, "refresh_cron"},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "timezone"},
		{"local timezone", map[string]string{"TIMEZONE": "Local"}, "IANA"},
		{"partial oidc", map[string]string{"OIDC_ISSUER": "https://id.example.com"}, "oidc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeYAML(t, "charts: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
