package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/adminportal_test")
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DIRECTORY_DATABASE_URL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_DevelopmentGeneratesSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ProductionRefusesDevKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", DevSigningKey)

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "development key")
}

func TestLoad_ProductionRefusesShortSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestLoad_RefreshTTLFloor(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REFRESH_TOKEN_TTL", "1h")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoad_DirectoryURLFallsBack(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DIRECTORY_DATABASE_URL", "")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, cfg.DatabaseURL, cfg.DirectoryDatabaseURL)
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 5, cfg.LockoutThreshold)
	assert.Equal(t, 15*time.Minute, cfg.LockoutWindow)
	assert.Equal(t, 10, cfg.PasswordMinLength)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenRetention)
}
