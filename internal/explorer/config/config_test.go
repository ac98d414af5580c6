package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
upstream:
  base_url: https://api.example.com
  token: secret
explorer:
  poll_interval: 500ms
  insights_limit: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "secret", cfg.Upstream.Token)
	assert.Equal(t, 500*time.Millisecond, cfg.Explorer.PollInterval)
	assert.Equal(t, 10, cfg.Explorer.InsightsLimit)
	assert.Equal(t, 5, cfg.Explorer.MaxPollFailures)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.True(t, cfg.Explorer.IncludeExplainability)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "@every 5m", cfg.Explorer.SnapshotCron)
}
