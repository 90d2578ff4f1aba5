package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const minSecretLen = 32

// Config is built once at startup and passed into each constructor.
// No package reads the environment after Load returns.
type Config struct {
	DatabaseURL string
	HTTPPort    string
	LogLevel    string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	BcryptCost int

	// RequireVerifiedEmail gates login on a verified email address.
	// Off by default: the upstream system tracked verification but never
	// enforced it at login.
	RequireVerifiedEmail bool
}

// Load reads configuration from the environment. Call godotenv.Load
// first if a .env file should be honored.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		HTTPPort:             envOr("HTTP_PORT", "8080"),
		LogLevel:             envOr("LOG_LEVEL", "info"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AccessTokenTTL:       time.Duration(envInt("JWT_ACCESS_TTL_HOURS", 24)) * time.Hour,
		RefreshTokenTTL:      time.Duration(envInt("JWT_REFRESH_TTL_DAYS", 7)) * 24 * time.Hour,
		BcryptCost:           envInt("BCRYPT_COST", bcrypt.DefaultCost),
		RequireVerifiedEmail: os.Getenv("REQUIRE_VERIFIED_EMAIL") == "true",
	}
	if len(cfg.JWTSecret) < minSecretLen {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least %d bytes, got %d", minSecretLen, len(cfg.JWTSecret))
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("config: token TTLs must be positive")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("config: BCRYPT_COST %d outside [%d,%d]", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}
