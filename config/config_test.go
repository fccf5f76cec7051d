package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func lookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{"JWT_SECRET": "s3cret"}))
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != "postgres" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.TaxRate.Equal(decimal.RequireFromString("0.18")) {
		t.Fatalf("tax rate = %s", cfg.TaxRate)
	}
	if cfg.RateLimitWindow != time.Minute || cfg.BodyLimitBytes != 4*1024*1024 {
		t.Fatalf("limits = %v / %d", cfg.RateLimitWindow, cfg.BodyLimitBytes)
	}
	if cfg.DBDSN == "" || string(cfg.JWTSecret) != "s3cret" {
		t.Fatalf("dsn/secret not set: %+v", cfg)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"JWT_SECRET_KEY":       "primary",
		"JWT_SECRET":           "fallback",
		"DB_DRIVER":            "SQLite",
		"DB_DSN":               "file::memory:",
		"TAX_RATE":             "0.05",
		"PORT":                 "not-a-port",
		"RATE_LIMIT_MAX":       "-4",
		"SEED":                 "true",
		"TABLE_RELEASE_STATUS": "cleaning",
	}))
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBDSN != "file::memory:" {
		t.Errorf("db = %s %s", cfg.DBDriver, cfg.DBDSN)
	}
	if string(cfg.JWTSecret) != "primary" {
		t.Errorf("secret = %s", cfg.JWTSecret)
	}
	if cfg.Port != "8080" || cfg.RateLimitMax != 60 {
		t.Errorf("invalid values should fall back: port %s max %d", cfg.Port, cfg.RateLimitMax)
	}
	if !cfg.Seed || cfg.TableReleaseStatus != "CLEANING" {
		t.Errorf("seed/release = %v/%s", cfg.Seed, cfg.TableReleaseStatus)
	}
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"tax rate too high", map[string]string{"JWT_SECRET": "x", "TAX_RATE": "18"}},
		{"tax rate garbage", map[string]string{"JWT_SECRET": "x", "TAX_RATE": "abc"}},
		{"unknown driver", map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "mysql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromEnv(lookup(tt.env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFromEnv_Timezone(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{"JWT_SECRET": "s", "TIMEZONE": "UTC"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location != time.UTC {
		t.Errorf("location = %v, want UTC", cfg.Location)
	}
	if _, err := FromEnv(lookup(map[string]string{"JWT_SECRET": "s", "TIMEZONE": "Mars/Olympus"})); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
