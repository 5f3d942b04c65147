package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	// Upstream reference data API.
	RefDataBaseURL   string
	RefDataAPIKey    string
	RefDataTimeoutMS int

	// Calculation behavior.
	Precision           int
	RoundingAdjustment  bool
	ItemWiseShippingTax bool

	// Reference data cache TTLs.
	PrefsTTL     time.Duration
	DiscountsTTL time.Duration
	TaxTTL       time.Duration

	// Rate limiting for the quote endpoints.
	RateLimitEnabled bool
	RateLimitPerMin  int
	RateLimitBurst   int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		RefDataBaseURL:   strings.TrimSpace(k.String("REFDATA_BASE_URL")),
		RefDataAPIKey:    strings.TrimSpace(k.String("REFDATA_API_KEY")),
		RefDataTimeoutMS: parseInt(k.String("REFDATA_TIMEOUT_MS"), 5000),

		Precision:           parseInt(k.String("CALC_PRECISION"), 2),
		RoundingAdjustment:  parseBoolDefault(k.String("CALC_ROUNDING_ADJUSTMENT"), true),
		ItemWiseShippingTax: parseBool(k.String("CALC_ITEMWISE_SHIPPING_TAX")),

		PrefsTTL:     parseDuration(k.String("REFDATA_PREFS_TTL"), "5m"),
		DiscountsTTL: parseDuration(k.String("REFDATA_DISCOUNTS_TTL"), "2m"),
		TaxTTL:       parseDuration(k.String("REFDATA_TAX_TTL"), "30m"),

		RateLimitEnabled: parseBoolDefault(k.String("RATE_LIMIT_ENABLED"), true),
		RateLimitPerMin:  parseInt(k.String("RATE_LIMIT_PER_MIN"), 120),
		RateLimitBurst:   parseInt(k.String("RATE_LIMIT_BURST"), 20),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.RefDataBaseURL == "" {
		return nil, errors.New("REFDATA_BASE_URL is required")
	}
	if cfg.Precision < 0 || cfg.Precision > 8 {
		return nil, fmt.Errorf("CALC_PRECISION out of range: %d", cfg.Precision)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	base := strings.TrimSpace(value)
	if base == "" {
		return fallback
	}
	n, err := strconv.Atoi(base)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseBoolDefault(value string, fallback bool) bool {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return parseBool(value)
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
