// Package config loads server configuration from an optional YAML file, a
// .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Addr        string `yaml:"addr"`
	WebDir      string `yaml:"web_dir"`
	DatabaseURL string `yaml:"database_url"`
	Timezone    string `yaml:"timezone"`

	// ForwardAuth trusts the Remote-User header. Enable only behind a proxy
	// that sets it.
	ForwardAuth bool `yaml:"forward_auth"`

	Charts struct {
		WindowDays   int     `yaml:"window_days"`
		GoalWeightLb float64 `yaml:"goal_weight_lb"`
	} `yaml:"charts"`

	Schedule struct {
		RefreshCron        string `yaml:"refresh_cron"`
		SessionCleanupCron string `yaml:"session_cleanup_cron"`
	} `yaml:"schedule"`

	Breaker struct {
		Failures   uint32        `yaml:"failures"`
		Timeout    time.Duration `yaml:"timeout"`
		MaxRetries int           `yaml:"max_retries"`
	} `yaml:"breaker"`

	OIDC struct {
		Issuer       string `yaml:"issuer"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"oidc"`

	// Location is Timezone resolved by Validate.
	Location *time.Location `yaml:"-"`
}

// Load reads the YAML file at path if it exists, loads .env, then applies
// environment overrides and defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "ADDR")
	setString(&c.WebDir, "WEB_DIR")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Timezone, "TIMEZONE")
	setString(&c.Schedule.RefreshCron, "REFRESH_CRON")
	setString(&c.Schedule.SessionCleanupCron, "SESSION_CLEANUP_CRON")
	setString(&c.OIDC.Issuer, "OIDC_ISSUER")
	setString(&c.OIDC.ClientID, "OIDC_CLIENT_ID")
	setString(&c.OIDC.ClientSecret, "OIDC_CLIENT_SECRET")
	setString(&c.OIDC.RedirectURL, "OIDC_REDIRECT_URL")

	if v := os.Getenv("WINDOW_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WINDOW_DAYS: %w", err)
		}
		c.Charts.WindowDays = n
	}
	if v := os.Getenv("GOAL_WEIGHT_LB"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GOAL_WEIGHT_LB: %w", err)
		}
		c.Charts.GoalWeightLb = f
	}
	if v := os.Getenv("FORWARD_AUTH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FORWARD_AUTH: %w", err)
		}
		c.ForwardAuth = b
	}
	if v := os.Getenv("BREAKER_FAILURES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid BREAKER_FAILURES: %w", err)
		}
		c.Breaker.Failures = uint32(n)
	}
	if v := os.Getenv("BREAKER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BREAKER_TIMEOUT: %w", err)
		}
		c.Breaker.Timeout = d
	}
	if v := os.Getenv("BREAKER_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BREAKER_MAX_RETRIES: %w", err)
		}
		c.Breaker.MaxRetries = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.WebDir == "" {
		c.WebDir = "web"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Charts.WindowDays == 0 {
		c.Charts.WindowDays = 28
	}
	if c.Charts.GoalWeightLb == 0 {
		c.Charts.GoalWeightLb = 155
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "*/15 * * * *"
	}
	if c.Schedule.SessionCleanupCron == "" {
		c.Schedule.SessionCleanupCron = "0 * * * *"
	}
	if c.Breaker.Failures == 0 {
		c.Breaker.Failures = 5
	}
	if c.Breaker.Timeout == 0 {
		c.Breaker.Timeout = 30 * time.Second
	}
}

// Validate checks ranges, resolves the timezone and parses the cron
// expressions.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	// Postgres needs a zone name it knows.
	if loc == time.Local {
		return errors.New("timezone must be an IANA name, not Local")
	}
	c.Location = loc

	if c.Charts.WindowDays < 1 || c.Charts.WindowDays > 366 {
		return fmt.Errorf("charts.window_days must be in 1..366, got %d", c.Charts.WindowDays)
	}
	if c.Charts.GoalWeightLb <= 0 {
		return errors.New("charts.goal_weight_lb must be positive")
	}
	if c.Breaker.MaxRetries < 0 {
		return errors.New("breaker.max_retries must not be negative")
	}
	for name, expr := range map[string]string{
		"schedule.refresh_cron":         c.Schedule.RefreshCron,
		"schedule.session_cleanup_cron": c.Schedule.SessionCleanupCron,
	} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	oidcSet := c.OIDC.Issuer != "" || c.OIDC.ClientID != ""
	if oidcSet && (c.OIDC.Issuer == "" || c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "") {
		return errors.New("oidc: issuer, client_id and redirect_url are required together")
	}
	return nil
}

// SSOEnabled reports whether an OIDC provider is configured.
func (c *Config) SSOEnabled() bool {
	return c.OIDC.Issuer != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
