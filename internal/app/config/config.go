// Package config gathers the process configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"crop_yield/internal/feature/prediction/domain/entity"
	"crop_yield/internal/platform/db"
	"crop_yield/internal/platform/externalapi/modelserver"
	"crop_yield/internal/platform/redis"
)

const (
	// SessionStoreMemory keeps sessions in process memory.
	SessionStoreMemory = "memory"
	// SessionStoreRedis keeps sessions in Redis so they survive restarts.
	SessionStoreRedis = "redis"
)

// Config is the full application configuration.
type Config struct {
	Port          string
	Policy        entity.InputPolicy
	LoginRequired bool

	SessionStore  string
	SessionTTL    time.Duration
	SessionSecret string
	SecureCookie  bool

	PasswordHasher  string
	LoginRatePerMin int
	LoginBurst      int
	CORSOrigins     []string

	LogLevel  string
	LogFormat string

	DB    db.Config
	Redis redis.Config
	Model modelserver.Config
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		SessionStore:   strings.ToLower(getenv("SESSION_STORE", SessionStoreMemory)),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		PasswordHasher: strings.ToLower(os.Getenv("PASSWORD_HASHER")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "text"),
		DB:             db.LoadConfigFromEnv(),
		Redis:          redis.LoadConfig(),
		Model:          modelserver.LoadConfig(),
	}

	policy, err := entity.PolicyByName(getenv("APP_VARIANT", entity.GatedPolicy.Name))
	if err != nil {
		errs = append(errs, fmt.Errorf("APP_VARIANT: %w", err))
	}
	cfg.Policy = policy
	cfg.LoginRequired = policy.Name == entity.GatedPolicy.Name
	if v := os.Getenv("LOGIN_REQUIRED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOGIN_REQUIRED: %w", err))
		}
		cfg.LoginRequired = b
	}

	if cfg.SessionStore != SessionStoreMemory && cfg.SessionStore != SessionStoreRedis {
		errs = append(errs, fmt.Errorf("SESSION_STORE: unknown store %q", cfg.SessionStore))
	}
	cfg.SessionTTL, err = duration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.SecureCookie, err = boolean("SECURE_COOKIE", false)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.LoginRatePerMin, err = integer("LOGIN_RATE_PER_MIN", 10)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.LoginBurst, err = integer("LOGIN_BURST", 5)
	if err != nil {
		errs = append(errs, err)
	}
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			errs = append(errs, fmt.Errorf("SESSION_SECRET: %w", err))
		}
		slog.Warn("SESSION_SECRET is not set; sessions will not survive a restart. Set a strong secret in production.")
		cfg.SessionSecret = secret
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func integer(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%s: invalid non-negative integer %q", key, v)
	}
	return n, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
