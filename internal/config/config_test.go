package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ACCTVIEW_ACCOUNTS_DIR", "")
	t.Setenv("ACCTVIEW_LOG_LEVEL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ParsesYAML(t *testing.T) {
	t.Setenv("ACCTVIEW_ACCOUNTS_DIR", "")
	t.Setenv("ACCTVIEW_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "accounts_dir: ~/tp-accounts\nlog_level: debug\nlog_file: /tmp/acctview.log\nwatch_debounce: 50ms\nready_timeout: 3s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "~/tp-accounts", cfg.AccountsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/acctview.log", cfg.LogFile)
	assert.Equal(t, 50*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, 3*time.Second, cfg.ReadyTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts_dir: /from/file\nlog_level: warn\n"), 0o600))
	t.Setenv("ACCTVIEW_ACCOUNTS_DIR", "/from/env")
	t.Setenv("ACCTVIEW_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.AccountsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unterminated\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestPath_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	assert.Equal(t, "/tmp/xdg-config/acctview/config.yaml", Path())
}
