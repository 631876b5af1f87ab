// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"librarian/internal/book"
	"librarian/internal/logging"
)

// Config holds the server settings.
type Config struct {
	Addr             string
	LogLevel         string
	LogFormat        string
	SeedFile         string
	IDStrategy       book.IDStrategy
	StrictValidation bool
	AllowedOrigins   []string
	MaxBodyBytes     int64
	RateLimitRPS     float64
	RateLimitBurst   int
	EnableHSTS       bool
	ShutdownTimeout  time.Duration
}

// LoadEnvFiles loads .env and .env.local. Variables already present in the
// environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the environment (after LoadEnvFiles) into a validated Config.
func Load() (Config, error) {
	LoadEnvFiles()
	return FromEnv()
}

// FromEnv reads the current environment without touching .env files.
func FromEnv() (Config, error) {
	var errs []error

	strategy, err := book.ParseIDStrategy(getEnv("ID_STRATEGY", string(book.IDStrategyMax)))
	if err != nil {
		errs = append(errs, fmt.Errorf("ID_STRATEGY: %w", err))
	}

	cfg := Config{
		Addr:             getEnv("APP_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		SeedFile:         os.Getenv("SEED_FILE"),
		IDStrategy:       strategy,
		StrictValidation: getBool("STRICT_VALIDATION", false, &errs),
		AllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		MaxBodyBytes:     int64(getInt("MAX_BODY_BYTES", 1<<20, &errs)),
		RateLimitRPS:     getFloat("RATE_LIMIT_RPS", 20, &errs),
		RateLimitBurst:   getInt("RATE_LIMIT_BURST", 40, &errs),
		EnableHSTS:       getBool("ENABLE_HSTS", false, &errs),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("APP_ADDR must not be empty"))
	}
	if _, err := logging.LookupLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if _, err := logging.LookupFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %w", err))
	}
	if _, err := book.ParseIDStrategy(string(c.IDStrategy)); err != nil {
		errs = append(errs, fmt.Errorf("ID_STRATEGY: %w", err))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func getFloat(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func getBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
