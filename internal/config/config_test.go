package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LIFECYCLE_MAX_RETRIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Lifecycle.MaxRetries)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: "your-secret-key-change-in-production"},
		Database:    DatabaseConfig{Password: "secret"},
		Lifecycle:   LifecycleConfig{MaxRetries: 3},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "rotated"
	assert.NoError(t, cfg.Validate())
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil))
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "app", Password: "hunter2", Database: "sneakers", SSLMode: "disable"}

	dsn := d.DSN()
	assert.Contains(t, dsn, "password=hunter2")
	assert.Contains(t, dsn, "TimeZone=UTC")

	assert.Equal(t, "postgres://app@db:5432/sneakers?sslmode=disable", d.Redacted())
	assert.NotContains(t, d.Redacted(), "hunter2")
}
