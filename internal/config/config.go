package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configDir  = "acctview"
	configFile = "config.yaml"

	DefaultWatchDebounce = 200 * time.Millisecond
	DefaultReadyTimeout  = 10 * time.Second
)

// Config is the user configuration.
type Config struct {
	// AccountsDir holds one TOML file per account. Empty means the default
	// data directory.
	AccountsDir   string        `yaml:"accounts_dir"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	ReadyTimeout  time.Duration `yaml:"ready_timeout"`
}

func Default() Config {
	return Config{
		LogLevel:      "info",
		WatchDebounce: DefaultWatchDebounce,
		ReadyTimeout:  DefaultReadyTimeout,
	}
}

// Path returns $XDG_CONFIG_HOME/acctview/config.yaml, falling back to
// ~/.config.
func Path() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, configDir, configFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", configDir, configFile)
	}
	return filepath.Join(home, ".config", configDir, configFile)
}

// Load reads the config at path (or Path() when empty). A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ACCTVIEW_ACCOUNTS_DIR")); v != "" {
		cfg.AccountsDir = v
	}
	if v := strings.TrimSpace(os.Getenv("ACCTVIEW_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
}
