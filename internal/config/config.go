// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"eld-trip-service/internal/hos"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// RedisAddr is the Redis host:port used to cache geocoding results.
	// Optional; when empty, geocoding goes straight to the upstream service.
	RedisAddr string

	// NominatimURL is the base URL of the Nominatim geocoding service.
	// Defaults to the public OpenStreetMap instance.
	NominatimURL string

	// NominatimTimeout bounds each geocoding HTTP request. Defaults to 10s.
	NominatimTimeout time.Duration

	// AverageSpeedMPH, FuelIntervalMiles, and MaxPlanDays override the
	// planner defaults when set. Regulatory limits are not configurable.
	AverageSpeedMPH   float64
	FuelIntervalMiles float64
	MaxPlanDays       int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// describing the first malformed optional value.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.NominatimTimeout, err = getDuration("NOMINATIM_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	defaults := hos.DefaultPlannerConfig()
	if cfg.AverageSpeedMPH, err = getFloat("AVERAGE_SPEED_MPH", defaults.AverageSpeedMPH); err != nil {
		return Config{}, err
	}
	if cfg.FuelIntervalMiles, err = getFloat("FUEL_INTERVAL_MILES", defaults.FuelIntervalMiles); err != nil {
		return Config{}, err
	}
	if cfg.MaxPlanDays, err = getInt("MAX_PLAN_DAYS", defaults.MaxPlanDays); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// PlannerConfig returns the planner tuning derived from this configuration.
// Values not exposed as environment variables keep their defaults.
func (c Config) PlannerConfig() hos.PlannerConfig {
	p := hos.DefaultPlannerConfig()
	p.AverageSpeedMPH = c.AverageSpeedMPH
	p.FuelIntervalMiles = c.FuelIntervalMiles
	p.MaxPlanDays = c.MaxPlanDays
	return p
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getFloat parses the environment variable named by key as a float64,
// returning fallback when unset.
func getFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, raw)
	}
	return v, nil
}

// getInt parses the environment variable named by key as an int,
// returning fallback when unset.
func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

// getDuration parses the environment variable named by key as a time.Duration
// (e.g. "10s", "1m"), returning fallback when unset.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return v, nil
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
