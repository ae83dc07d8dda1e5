package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/gommon/random"
)

// DevSigningKey is the well-known development key. Production startup refuses
// it outright.
const DevSigningKey = "dev-insecure-signing-key-do-not-use"

// Config holds everything the service reads from the environment.
type Config struct {
	Env         string // "development" or "production"
	Port        int
	DatabaseURL string
	// DirectoryDatabaseURL points at the externally-owned read-only company
	// directory schema. Falls back to DatabaseURL when unset.
	DirectoryDatabaseURL string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TokenRetention  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	ArchiveBucket  string

	LockoutThreshold int
	LockoutWindow    time.Duration
	LockoutCooldown  time.Duration

	PasswordMinLength  int
	ForbiddenPasswords []string

	ChangePasswordLimit  int
	ChangePasswordWindow time.Duration
}

// Load reads configuration from the environment and applies the production
// hardening checks.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		Port:                 getEnvInt("PORT", 8080),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DirectoryDatabaseURL: os.Getenv("DIRECTORY_DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AccessTokenTTL:       getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:      getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		TokenRetention:       getEnvDuration("TOKEN_RETENTION", 30*24*time.Hour),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		MinioEndpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:       getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:       getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:          os.Getenv("MINIO_USE_SSL") == "true",
		ArchiveBucket:        getEnv("AUDIT_ARCHIVE_BUCKET", "audit-archive"),
		LockoutThreshold:     getEnvInt("LOCKOUT_THRESHOLD", 5),
		LockoutWindow:        getEnvDuration("LOCKOUT_WINDOW", 15*time.Minute),
		LockoutCooldown:      getEnvDuration("LOCKOUT_COOLDOWN", 15*time.Minute),
		PasswordMinLength:    getEnvInt("PASSWORD_MIN_LENGTH", 10),
		ChangePasswordLimit:  getEnvInt("CHANGE_PASSWORD_LIMIT", 5),
		ChangePasswordWindow: getEnvDuration("CHANGE_PASSWORD_WINDOW", time.Hour),
	}
	cfg.ForbiddenPasswords = []string{"password", "123456", "qwerty", "letmein", "admin"}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.DirectoryDatabaseURL == "" {
		cfg.DirectoryDatabaseURL = cfg.DatabaseURL
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = random.String(32)
		log.Printf("WARNING: Using generated JWT secret for development")
	}
	if cfg.IsProduction() && cfg.JWTSecret == DevSigningKey {
		return nil, fmt.Errorf("refusing to start: JWT_SECRET is the known development key")
	}
	if len(cfg.JWTSecret) < 32 && cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 bytes in production")
	}

	// Refresh lifetime floor: anything shorter breaks the rotation contract.
	if cfg.RefreshTokenTTL < 24*time.Hour {
		cfg.RefreshTokenTTL = 24 * time.Hour
	}

	return cfg, nil
}

// IsProduction reports whether hardening checks apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
