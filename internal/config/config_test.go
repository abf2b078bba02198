package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Daemon.IdleTimeout)
	assert.Nil(t, cfg.Logging.Level)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[daemon]
idle-timeout = "8s"
poll-interval = "50ms"

[logging]
level = "debug"
format = "json"

[browser]
context-dir = "/tmp/ctx"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Daemon.IdleTimeout)
	assert.Equal(t, "8s", *cfg.Daemon.IdleTimeout)
	assert.Equal(t, "50ms", *cfg.Daemon.PollInterval)
	assert.Nil(t, cfg.Daemon.ContextPoll)
	assert.Equal(t, "debug", *cfg.Logging.Level)
	assert.Equal(t, "json", *cfg.Logging.Format)
	assert.Equal(t, "/tmp/ctx", *cfg.Browser.ContextDir)
}

func TestLoadConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(Template), 0o644))
	_, err := LoadConfig(path)
	assert.NoError(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[daemon\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("idle-timeout", "5s")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	_, err = ParseDuration("idle-timeout", "0s")
	assert.Error(t, err)
	_, err = ParseDuration("idle-timeout", "soon")
	assert.Error(t, err)
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "fingerpain", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "fingerpain", "fingerpain.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "fingerpain", "daemon.lock"), DefaultLockPath())
	assert.Equal(t, filepath.Join("/data", "fingerpain", "browser"), DefaultContextDir())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), ExpandHome("~/x/y"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
}
