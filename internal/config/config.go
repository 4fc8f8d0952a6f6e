package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"stockroom/m/internal/dashboard"
)

const (
	defaultDSN  = "file:inventory.db?_pragma=foreign_keys(1)"
	defaultPort = "8080"
)

// Config holds application configuration values.
type Config struct {
	Secret      string `validate:"required"`
	DatabaseDSN string `validate:"required"`
	HTTPPort    string `validate:"required,numeric"`

	LowStockThreshold int `validate:"gte=0"`
	ExpiryHorizonDays int `validate:"gte=0"`
	TopSellersLimit   int `validate:"gte=1"`

	SessionTTL         time.Duration `validate:"gt=0"`
	CORSAllowedOrigins []string      `validate:"dive,required"`
}

var validate = validator.New()

// Load reads configuration from environment variables with reasonable defaults.
// A .env file in the working directory is honoured when present.
func Load() Config {
	_ = godotenv.Load()

	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = defaultPort
	}
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to %s", port, defaultPort)
		port = defaultPort
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = defaultDSN
	}

	return Config{
		Secret:             secret,
		DatabaseDSN:        dsn,
		HTTPPort:           port,
		LowStockThreshold:  envInt("LOW_STOCK_THRESHOLD", dashboard.DefaultLowStockThreshold),
		ExpiryHorizonDays:  envInt("EXPIRY_HORIZON_DAYS", dashboard.DefaultExpiryHorizonDays),
		TopSellersLimit:    envInt("TOP_SELLERS_LIMIT", dashboard.DefaultTopSellers),
		SessionTTL:         envDuration("SESSION_TTL", 24*time.Hour),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("config: field %s failed on %q", verrs[0].Field(), verrs[0].Tag())
	}
	return fmt.Errorf("config: %w", err)
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %s", key, raw, fallback)
		return fallback
	}
	return v
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
