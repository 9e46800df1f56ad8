package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_DATABASE", "rental.db")
	t.Setenv("AUTHZ_URL", "http://localhost:8080")
	t.Setenv("AUTHZ_CLIENT_ID", "client")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, time.Minute, cfg.ReapInterval)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SESSION_IDLE_TIMEOUT", "90s")
	t.Setenv("DB_CONNECTION_LIMIT", "not-a-number")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.SessionIdleTimeout)
	assert.Equal(t, 5, cfg.DBConnectionLimit)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRequiresDatabaseUserForServerDatabases(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_USER", "")

	_, err := Load()
	assert.EqualError(t, err, "DB_USER is required")
}

func TestLoadRequiresAuthorizer(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTHZ_URL", "")

	_, err := Load()
	assert.EqualError(t, err, "AUTHZ_URL is required")
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "DB_TYPE=sqlite\nDB_DATABASE=from-file.db\nAUTHZ_URL=http://authz\nAUTHZ_CLIENT_ID=abc\nREDIS_URL=redis://localhost:6379\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, key := range []string{"DB_TYPE", "DB_DATABASE", "AUTHZ_URL", "AUTHZ_CLIENT_ID", "REDIS_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("ENV_FILE", envFile)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DBDatabase)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}
