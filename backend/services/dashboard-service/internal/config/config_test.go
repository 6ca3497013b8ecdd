package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DOTENV_FILE", "")
}

func TestLoadRequiresPortalSecret(t *testing.T) {
	isolate(t)
	t.Setenv("RAPT_PORTAL_USERNAME", "brewer@example.com")
	t.Setenv("RAPT_PORTAL_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAPT_PORTAL_SECRET")
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	isolate(t)
	t.Setenv("RAPT_PORTAL_USERNAME", "brewer@example.com")
	t.Setenv("RAPT_PORTAL_SECRET", "hunter2")
	t.Setenv("SNAPSHOT_INTERVAL", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://brew.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, "rapt-user", cfg.Rapt.ClientID)
	assert.Equal(t, "https://api.rapt.io/api", cfg.Rapt.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Snapshot.Interval)
	assert.Equal(t, []string{"http://localhost:3000", "https://brew.example.com"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.UseRedis())
}

func TestLoadYAMLFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: ":9090"
rapt:
  username: brewer@example.com
  password: from-file
snapshot:
  redisAddr: localhost:6379
  interval: 2s
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RAPT_PORTAL_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, "from-env", cfg.Rapt.Password)
	assert.Equal(t, 2*time.Second, cfg.Snapshot.Interval)
	assert.True(t, cfg.UseRedis())
	assert.Equal(t, "brewdash:snapshot", cfg.Snapshot.RedisKey)
}

func TestValidateRejectsNonPositiveInterval(t *testing.T) {
	cfg := Defaults()
	cfg.Rapt.Username = "u"
	cfg.Rapt.Password = "p"
	cfg.Snapshot.Interval = 0
	assert.Error(t, cfg.Validate())
}
