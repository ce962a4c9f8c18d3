package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hetave/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, ":5002", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 720*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "http://localhost:5002/api/auth/google/callback", cfg.GoogleRedirectURI)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:5173")
	assert.False(t, cfg.GoogleEnabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", "SQLite")
	v.Set("CORS_ORIGINS", "https://hetave.co.in, https://admin.hetave.co.in")
	v.Set("ADMIN_EMAIL", "Owner@Hetave.co.in")
	v.Set("GOOGLE_CLIENT_ID", "id")
	v.Set("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, []string{"https://hetave.co.in", "https://admin.hetave.co.in"}, cfg.CORSOrigins)
	assert.Equal(t, "owner@hetave.co.in", cfg.AdminEmail)
	assert.True(t, cfg.GoogleEnabled())
}

func TestFromViper_Invalid(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DRIVER", "mongo")
	_, err := config.FromViper(v)
	assert.ErrorContains(t, err, "unsupported DATABASE_DRIVER")

	v = viper.New()
	config.SetDefaults(v)
	v.Set("JWT_SECRET", "")
	_, err = config.FromViper(v)
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hetave.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \":9090\"\nJWT_TTL: 1h\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, time.Hour, cfg.JWTTTL)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
