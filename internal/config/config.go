package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	LockBackendMongo  = "mongo"
	LockBackendRedis  = "redis"
	LockBackendMemory = "memory"
)

type Config struct {
	Port            string
	MongoDBURI      string
	MongoDBPassword string
	MongoDBName     string
	JWTSecret       string
	TokenTTL        time.Duration
	LockBackend     string
	RedisURL        string
	LockTTL         time.Duration
	LockWait        time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
	Environment     string
	LogLevel        string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "5000"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBName:     getEnvWithDefault("MONGODB_DB", "parkseva"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		LockBackend:     strings.ToLower(getEnvWithDefault("LOCK_BACKEND", LockBackendMongo)),
		RedisURL:        os.Getenv("REDIS_URL"),
		AllowedOrigins:  splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.TokenTTL, err = getDurationWithDefault("JWT_EXPIRES_IN", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getDurationWithDefault("LOCK_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.LockWait, err = getDurationWithDefault("LOCK_WAIT", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDurationWithDefault("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// a slot lock must outlive the request that holds it
	if cfg.LockTTL <= cfg.RequestTimeout {
		return nil, fmt.Errorf("LOCK_TTL (%s) must be longer than REQUEST_TIMEOUT (%s)", cfg.LockTTL, cfg.RequestTimeout)
	}

	switch cfg.LockBackend {
	case LockBackendMongo, LockBackendMemory:
	case LockBackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when LOCK_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unsupported LOCK_BACKEND %q (expected mongo, redis or memory)", cfg.LockBackend)
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
