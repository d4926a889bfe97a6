package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "lab_inventory", cfg.Database.Name)
	assert.Equal(t, "America/Sao_Paulo", cfg.Lab.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.Alerts.Interval)
	assert.True(t, cfg.Auth.Required)
	assert.NotEmpty(t, cfg.JWT.Secret, "development gets a fallback secret")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
env: production
server:
  port: 7000
database:
  name: from_file
jwt:
  secret: file-secret
alerts:
  interval: 30s
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("LAB_SERVER_PORT", "7100")
	t.Setenv("DB_NAME", "from_env")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, "from_env", cfg.Database.Name)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Second, cfg.Alerts.Interval)
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Env = "production"
	cfg.JWT.Secret = ""
	cfg.Lab.Timezone = "Mars/Olympus"
	cfg.Alerts.Interval = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
	assert.Contains(t, err.Error(), "lab.timezone")
	assert.Contains(t, err.Error(), "alerts.interval")
}

func TestDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "db"
	cfg.Database.Port = 5432
	cfg.Database.User = "lab"
	cfg.Database.Password = "p@ss"
	cfg.Database.Name = "lab_inventory"
	cfg.Database.SSLMode = "disable"

	assert.Equal(t, "postgres://lab:p%40ss@db:5432/lab_inventory?sslmode=disable", cfg.DSN())
}
