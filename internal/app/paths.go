package app

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	stateFileName = ".acctview-state.json"
	lockFileName  = ".acctview.lock"
	accountSuffix = ".toml"
)

// DefaultAccountsDir is $ACCTVIEW_ACCOUNTS_DIR, else
// $XDG_DATA_HOME/acctview/accounts, else ~/.local/share/acctview/accounts.
func DefaultAccountsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if override := strings.TrimSpace(os.Getenv("ACCTVIEW_ACCOUNTS_DIR")); override != "" {
		return resolvePathWithHome(override, home), nil
	}
	xdgData := firstNonEmpty(os.Getenv("XDG_DATA_HOME"), filepath.Join(home, ".local", "share"))
	return filepath.Join(resolvePathWithHome(xdgData, home), "acctview", "accounts"), nil
}

func resolveStorePaths(dir string) (StorePaths, error) {
	if strings.TrimSpace(dir) == "" {
		resolved, err := DefaultAccountsDir()
		if err != nil {
			return StorePaths{}, err
		}
		dir = resolved
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return StorePaths{}, err
		}
		dir = resolvePathWithHome(dir, home)
	}
	return StorePaths{
		RootDir:   dir,
		StatePath: filepath.Join(dir, stateFileName),
		LockPath:  filepath.Join(dir, lockFileName),
	}, nil
}

// ExpandHome resolves a leading "~" against the user's home directory.
func ExpandHome(raw string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(raw)
	}
	return resolvePathWithHome(raw, home)
}

func resolvePathWithHome(raw string, home string) string {
	if strings.HasPrefix(raw, "~/") {
		return filepath.Join(home, strings.TrimPrefix(raw, "~/"))
	}
	if strings.HasPrefix(raw, "~\\") {
		return filepath.Join(home, strings.TrimPrefix(raw, "~\\"))
	}
	if raw == "~" {
		return home
	}
	return filepath.Clean(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
