package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration values.
type Config struct {
	Port string

	DBDriver string // "postgres" or "sqlite"
	DBDSN    string

	TaxRate        decimal.Decimal
	Currency       string
	RestaurantName string
	GSTNumber      string

	JWTSecret       []byte
	AllowedOrigins  string
	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimitBytes  int

	RabbitMQURL        string
	SnowflakeNode      int64
	Location           *time.Location
	Seed               bool
	SeedAdminPassword  string
	TableReleaseStatus string
}

// Load reads a .env file when present and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: ignoring unreadable .env: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function; Load passes os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	envInt := func(key string, def int) int {
		v := getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			log.Printf("config: invalid %s value %q, defaulting to %d", key, v, def)
			return def
		}
		return n
	}

	cfg := Config{
		Port:               env("PORT", "8080"),
		DBDriver:           strings.ToLower(env("DB_DRIVER", "postgres")),
		DBDSN:              env("DB_DSN", ""),
		Currency:           env("CURRENCY", "INR"),
		RestaurantName:     env("RESTAURANT_NAME", "The Great Restaurant"),
		GSTNumber:          env("GST_NUMBER", ""),
		AllowedOrigins:     env("ALLOWED_ORIGINS", "*"),
		RateLimitMax:       envInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow:    time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		RabbitMQURL:        env("RABBITMQ_URL", ""),
		SnowflakeNode:      int64(envInt("SNOWFLAKE_NODE", 1)),
		TableReleaseStatus: strings.ToUpper(env("TABLE_RELEASE_STATUS", "AVAILABLE")),
	}

	// BODY_LIMIT_BYTES wins over BODY_LIMIT_MB.
	cfg.BodyLimitBytes = envInt("BODY_LIMIT_BYTES", 0)
	if cfg.BodyLimitBytes <= 0 {
		cfg.BodyLimitBytes = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		log.Printf("config: invalid PORT value %q, defaulting to 8080", cfg.Port)
		cfg.Port = "8080"
	}

	rate, err := decimal.NewFromString(env("TAX_RATE", "0.18"))
	if err != nil {
		return Config{}, fmt.Errorf("config: TAX_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("config: TAX_RATE must be a fraction in [0, 1), got %s", rate)
	}
	cfg.TaxRate = rate

	if seed, err := strconv.ParseBool(env("SEED", "false")); err == nil {
		cfg.Seed = seed
	}
	cfg.SeedAdminPassword = env("SEED_ADMIN_PASSWORD", "admin123")

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBDSN == "" {
			cfg.DBDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				env("DB_HOST", "localhost"), env("DB_USER", "postgres"), getenv("DB_PASSWORD"),
				env("DB_NAME", "restaurant_pos"), env("DB_PORT", "5432"))
		}
	case "sqlite":
		if cfg.DBDSN == "" {
			cfg.DBDSN = "restaurant-pos.db"
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	// Prefer JWT_SECRET_KEY, fallback to JWT_SECRET
	secret := env("JWT_SECRET_KEY", getenv("JWT_SECRET"))
	if strings.TrimSpace(secret) == "" {
		return Config{}, errors.New("config: JWT secret not configured (set JWT_SECRET_KEY or JWT_SECRET)")
	}
	cfg.JWTSecret = []byte(secret)

	tz := env("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("config: TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}
