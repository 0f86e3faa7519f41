// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// MigrateOnStart applies pending migrations before serving. Defaults to true.
	MigrateOnStart bool

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// JWTSecret verifies HS256 bearer tokens. Required.
	JWTSecret string

	Redis     RedisConfig
	Providers ProviderConfig
	NewRelic  NewRelicConfig
}

// RedisConfig configures the search cache and idempotency store. An empty
// Addr disables both.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// SearchTTL is how long search results are cached. Defaults to 10m.
	SearchTTL time.Duration
}

// ProviderConfig points at the live travel data APIs. A capability without
// a URL is served by the static fallback.
type ProviderConfig struct {
	FlightURL   string
	HotelURL    string
	ActivityURL string
	CurrencyURL string
	VisaURL     string
	APIKey      string
	Timeout     time.Duration
	Retries     int
}

// NewRelicConfig enables APM when LicenseKey is set.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
}

// Enabled reports whether a license key was configured.
func (c NewRelicConfig) Enabled() bool { return c.LicenseKey != "" }

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Providers: ProviderConfig{
			FlightURL:   os.Getenv("FLIGHT_API_URL"),
			HotelURL:    os.Getenv("HOTEL_API_URL"),
			ActivityURL: os.Getenv("ACTIVITY_API_URL"),
			CurrencyURL: os.Getenv("CURRENCY_API_URL"),
			VisaURL:     os.Getenv("VISA_API_URL"),
			APIKey:      os.Getenv("PROVIDER_API_KEY"),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "tripwizard"),
			LicenseKey: os.Getenv("NEW_RELIC_LICENSE_KEY"),
		},
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", true); err != nil {
		return Config{}, err
	}
	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.Redis.SearchTTL, err = getDuration("SEARCH_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.Providers.Timeout, err = getDuration("PROVIDER_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Providers.Retries, err = getInt("PROVIDER_RETRIES", 2); err != nil {
		return Config{}, err
	}
	if cfg.Providers.Retries < 0 {
		return Config{}, fmt.Errorf("PROVIDER_RETRIES must not be negative")
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

// getDuration parses values like "30s" or "10m".
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
