package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Session store backends
const (
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStoreDatabase = "database"
)

// Config holds all configuration for the application
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Logging Configuration
	Logging LoggingConfig

	// HTTP server Configuration
	Server ServerConfig

	// Password hashing and token signing
	Security SecurityConfig

	// Session Configuration
	Sessions SessionConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `validate:"required"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string `validate:"required"` // Redis address (host:port)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string `validate:"oneof=json console"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Port           int `validate:"min=1,max=65535"`
	AllowedOrigins []string
}

// SecurityConfig holds secrets and hashing parameters
type SecurityConfig struct {
	SecretKey  string `validate:"required"`
	BcryptCost int    `validate:"min=4,max=31"`
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	Store         string        `validate:"oneof=memory redis database"`
	TTL           time.Duration `validate:"min=1s"`
	CookieName    string        `validate:"required"`
	CookieSecure  bool
	PurgeSchedule string `validate:"required"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}

	bcryptCost, err := intEnv("BCRYPT_COST", bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	ttl, err := durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cookieSecure, err := boolEnv("SESSION_COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL: stringEnv("DATABASE_URL", "authgate.sqlite"),
		},
		Redis: RedisConfig{
			Address: stringEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Logging: LoggingConfig{
			Level:  stringEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(stringEnv("LOG_FORMAT", "json")),
		},
		Server: ServerConfig{
			Port:           port,
			AllowedOrigins: splitList(stringEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Security: SecurityConfig{
			SecretKey:  stringEnv("SECRET_KEY", "secret"),
			BcryptCost: bcryptCost,
		},
		Sessions: SessionConfig{
			Store:         strings.ToLower(stringEnv("SESSION_STORE", SessionStoreMemory)),
			TTL:           ttl,
			CookieName:    stringEnv("SESSION_COOKIE_NAME", "authgate.sid"),
			CookieSecure:  cookieSecure,
			PurgeSchedule: stringEnv("SESSION_PURGE_SCHEDULE", "*/15 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsPostgres reports whether the database URL points at PostgreSQL
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
