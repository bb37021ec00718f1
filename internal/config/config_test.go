package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Calc.WarningMarginPercent != 20 {
		t.Errorf("expected warning margin 20, got %v", cfg.Calc.WarningMarginPercent)
	}
	if cfg.Redis.TTL != 24*time.Hour {
		t.Errorf("expected redis ttl 24h, got %v", cfg.Redis.TTL)
	}
	if cfg.Database.Enabled() {
		t.Error("expected database to be disabled without DB_HOST")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTP.Addr)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "11,42")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "auditor")
	t.Setenv("WARNING_MARGIN_PERCENT", "15.5")
	t.Setenv("ADVICE_RATE_LIMIT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		t.Fatalf("ValidateBot failed: %v", err)
	}
	if !cfg.IsAdmin(42) || cfg.IsAdmin(7) {
		t.Fatalf("unexpected admin set %v", cfg.Telegram.AdminIDs)
	}
	if cfg.Calc.WarningMarginPercent != 15.5 {
		t.Errorf("expected 15.5, got %v", cfg.Calc.WarningMarginPercent)
	}
	if cfg.Gemini.RateLimit != 3 {
		t.Errorf("expected rate limit 3, got %d", cfg.Gemini.RateLimit)
	}
	want := "host=db port=5432 user= password= dbname=auditor sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("expected dsn %q, got %q", want, got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"negative threshold", map[string]string{"WARNING_MARGIN_PERCENT": "-1"}},
		{"nan threshold", map[string]string{"WARNING_MARGIN_PERCENT": "NaN"}},
		{"infinite threshold", map[string]string{"WARNING_MARGIN_PERCENT": "+Inf"}},
		{"db without name", map[string]string{"DB_HOST": "db"}},
		{"bad duration", map[string]string{"REDIS_TTL": "forever"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateBotRequiresToken(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateBot(); err == nil {
		t.Fatal("expected missing token error")
	}
	cfg.Telegram.Token = "x"
	if err := cfg.ValidateBot(); err == nil {
		t.Fatal("expected missing admin error")
	}
}
