package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("STATE_BACKEND", "")
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" || cfg.StateBackend != "memory" || cfg.Currency != "INR" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STATE_BACKEND", "Redis")
	t.Setenv("ADMIN_EMAILS", "a@shop.test, b@shop.test,,")
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "3")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CHECKOUT_RATE_PER_MINUTE", "oops")

	cfg := FromEnv()
	if cfg.StateBackend != "redis" {
		t.Fatalf("expected lower-cased backend, got %q", cfg.StateBackend)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[1] != "b@shop.test" {
		t.Fatalf("unexpected admin emails %v", cfg.AdminEmails)
	}
	if cfg.BackendTimeout != 3*time.Second || cfg.RedisDB != 2 {
		t.Fatalf("unexpected parsed values %+v", cfg)
	}
	if cfg.CheckoutPerMin != 10 {
		t.Fatalf("expected default for unparsable value, got %d", cfg.CheckoutPerMin)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MERCHANT_NAME=FileShop\nCURRENCY=USD\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("CURRENCY", "EUR")
	t.Setenv("MERCHANT_NAME", "")
	os.Unsetenv("MERCHANT_NAME")

	cfg := Load(path)
	if cfg.MerchantName != "FileShop" {
		t.Fatalf("expected value from file, got %q", cfg.MerchantName)
	}
	if cfg.Currency != "EUR" {
		t.Fatalf("expected environment to win, got %q", cfg.Currency)
	}
	os.Unsetenv("MERCHANT_NAME")
}

func TestLocationFallsBack(t *testing.T) {
	cfg := Config{ReportTimeZone: "Not/AZone"}
	if cfg.Location() != time.Local {
		t.Fatalf("expected local fallback")
	}
	cfg.ReportTimeZone = "UTC"
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC")
	}
}
