package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_YAMLOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  env: test
database:
  driver: sqlite
  url: "file:test.db"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
  access_ttl: 1h
auth:
  reset_ttl: 30m
  rate_limit:
    window: 1m
    max_attempts: 3
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTTL, "default kept")
	assert.Equal(t, 30*time.Minute, cfg.Auth.ResetTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.VerificationTTL)
	assert.Equal(t, 3, cfg.Auth.RateLimit.MaxAttempts)
}

func TestLoadFile_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/edujobs")
	t.Setenv("SERVER_PORT", "8181")
	t.Setenv("JWT_ACCESS_TTL", "2h")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, EnvDevelopment, cfg.Server.Env)
}

func TestLoadFile_BadEnvValue(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/edujobs")
	t.Setenv("SERVER_PORT", "eighty")

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "SERVER_PORT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.DSN = "postgres://localhost/edujobs"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		return cfg
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Server.Env = EnvProduction
	cfg.Auth.ExposeTokens = true
	assert.ErrorContains(t, cfg.Validate(), "expose_tokens")

	cfg = valid()
	cfg.Server.Env = EnvProduction
	cfg.JWT.Secret = "short"
	assert.ErrorContains(t, cfg.Validate(), "jwt.secret")

	cfg = valid()
	cfg.JWT.Secret = ""
	assert.NoError(t, cfg.Validate(), "development may run without a secret")
	assert.NotEmpty(t, cfg.JWTSecret())

	cfg = valid()
	cfg.Database.Driver = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "database.driver")

	cfg = valid()
	assert.Equal(t, 7*24*time.Hour, cfg.Workers.TokenRetention)
	cfg.Workers.TokenRetention = -time.Hour
	assert.ErrorContains(t, cfg.Validate(), "workers.token_retention")
}

func TestSecureCookies(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.SecureCookies())

	cfg.Server.Env = EnvProduction
	assert.True(t, cfg.SecureCookies())

	off := false
	cfg.Auth.CookieSecure = &off
	assert.False(t, cfg.SecureCookies())
}
