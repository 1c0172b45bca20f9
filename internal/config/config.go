package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort           = "5000"
	defaultDatabaseURL    = "titanax.db"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultAccessTTL      = "24h"
	defaultResetTTL       = "1h"
	defaultVerifyTTL      = "24h"
	defaultFrontendURL    = "http://localhost:5173"
	defaultAuthRateLimit  = "20"
	defaultAuthRateWindow = "15m"
)

type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	JWTSecret      string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration
	FrontendURL    string
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.FrontendURL = strings.TrimSpace(getEnv("FRONTEND_URL", defaultFrontendURL))

	var err error
	cfg.AccessTokenTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", defaultAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.ResetTokenTTL, err = parseDurationEnv("RESET_TOKEN_TTL", defaultResetTTL)
	if err != nil {
		return nil, err
	}
	cfg.VerifyTokenTTL, err = parseDurationEnv("VERIFY_TOKEN_TTL", defaultVerifyTTL)
	if err != nil {
		return nil, err
	}
	cfg.AuthRateWindow, err = parseDurationEnv("AUTH_RATE_WINDOW", defaultAuthRateWindow)
	if err != nil {
		return nil, err
	}
	cfg.AuthRateLimit, err = parseIntEnv("AUTH_RATE_LIMIT", defaultAuthRateLimit)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate runs once at startup. A missing signing secret must stop the
// process here rather than fail authenticated requests one at a time.
func validate(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be > 0")
	}
	if cfg.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be > 0")
	}
	if cfg.VerifyTokenTTL <= 0 {
		return fmt.Errorf("VERIFY_TOKEN_TTL must be > 0")
	}
	if cfg.AuthRateLimit <= 0 || cfg.AuthRateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be > 0")
	}

	if isProdLike(cfg.AppEnv) && cfg.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
