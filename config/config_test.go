package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "vendora", cfg.System.Appid)
	assert.Equal(t, "/var/vendora", cfg.System.Workdir)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, "9b6de5cc-vendora-0f03-ad", cfg.Web.JwtSecret)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 100, cfg.Database.MaxConn)
	assert.Equal(t, 10, cfg.Database.IdleConn)
	assert.Equal(t, int64(0), cfg.Checkout.CommissionRate)
	assert.Equal(t, 120, cfg.Checkout.StalePendingMinutes)
}

func TestLoadConfigUnderscoreKeys(t *testing.T) {
	yml := `
web:
  port: 2816
  jwt_secret: test-secret
database:
  max_conn: 7
  idle_conn: 3
logger:
  file_enable: true
checkout:
  commission_rate: 250
  stale_pending_minutes: 45
`
	cfile := filepath.Join(t.TempDir(), "vendora.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(yml), 0o644))

	cfg, err := LoadConfig(cfile)
	require.NoError(t, err)

	assert.Equal(t, 2816, cfg.Web.Port)
	assert.Equal(t, "test-secret", cfg.Web.JwtSecret)
	assert.Equal(t, 7, cfg.Database.MaxConn)
	assert.Equal(t, 3, cfg.Database.IdleConn)
	assert.True(t, cfg.Logger.FileEnable)
	assert.Equal(t, int64(250), cfg.Checkout.CommissionRate)
	assert.Equal(t, 45, cfg.Checkout.StalePendingMinutes)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, 1816, cfg.Web.Port)
}
