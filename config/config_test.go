package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tektris.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, 200*time.Millisecond, cfg.ReleaseTimeout)
	assert.Equal(t, []string{" "}, cfg.Keys.HardDrop)
	assert.Equal(t, log.TextFormatter, cfg.Log.Formatter())
}

func TestLoadOverrides(t *testing.T) {
	p := writeConfig(t, `
mode: serve
ssh:
  port: 2222
http:
  port: 0
log:
  level: debug
  format: json
keys:
  left: [h, left]
  right: [l, right]
release_timeout: 150ms
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ModeServe, cfg.Mode)
	assert.Equal(t, 2222, cfg.SSH.Port)
	assert.Equal(t, ".ssh/id_ed25519", cfg.SSH.HostKeyPath, "unset fields keep defaults")
	assert.Equal(t, 0, cfg.HTTP.Port)
	assert.Equal(t, []string{"h", "left"}, cfg.Keys.Left)
	assert.Equal(t, []string{"up"}, cfg.Keys.Rotate)
	assert.Equal(t, 150*time.Millisecond, cfg.ReleaseTimeout)
	assert.Equal(t, log.JSONFormatter, cfg.Log.Formatter())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config")

	_, err = Load(writeConfig(t, "mode: [local"))
	require.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"mode", func(c *Config) { c.Mode = "arcade" }, `unknown mode "arcade"`},
		{"ssh port", func(c *Config) { c.Mode = ModeServe; c.SSH.Port = 0 }, "ssh port out of range"},
		{"http port", func(c *Config) { c.Mode = ModeServe; c.HTTP.Port = 70000 }, "http port out of range"},
		{"tailscale", func(c *Config) {
			c.Mode = ModeServe
			c.Tailscale = Tailscale{Enabled: true}
		}, "tailscale hostname required"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, `unknown log format "xml"`},
		{"release", func(c *Config) { c.ReleaseTimeout = 0 }, "release_timeout must be positive"},
		{"unbound", func(c *Config) { c.Keys.Pause = nil }, "no keys bound to pause"},
		{"duplicate", func(c *Config) { c.Keys.Quit = []string{"p"} }, `key "p" bound to both`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(&cfg)
			require.ErrorContains(t, cfg.Validate(), tc.errMsg)
		})
	}
}
