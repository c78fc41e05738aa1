package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"acctview/internal/account"
)

func accountPath(paths StorePaths, id string) string {
	return filepath.Join(paths.RootDir, id+accountSuffix)
}

// accountIDFromPath returns the id for an account file path, or "" when the
// path is not an account file (temp files, state, lock).
func accountIDFromPath(path string) string {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, accountSuffix) {
		return ""
	}
	id := strings.TrimSuffix(name, accountSuffix)
	if validateAccountID(id) != nil {
		return ""
	}
	return id
}

func listAccountIDs(paths StorePaths) ([]string, error) {
	entries, err := os.ReadDir(paths.RootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id := accountIDFromPath(entry.Name()); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func loadAccountFile(paths StorePaths, id string) (AccountFile, error) {
	if err := validateAccountID(id); err != nil {
		return AccountFile{}, err
	}
	var f AccountFile
	if err := readTOMLFile(accountPath(paths, id), &f); err != nil {
		return AccountFile{}, err
	}
	if f.Version == 0 {
		f.Version = 1
	}
	return f, nil
}

func saveAccountFile(paths StorePaths, id string, f AccountFile) error {
	if err := validateAccountID(id); err != nil {
		return err
	}
	if _, err := account.ParseConnectionStatus(f.ConnectionStatus); err != nil {
		return fmt.Errorf("account %q: %w", id, err)
	}
	f.Version = 1
	return writeTOMLAtomic(accountPath(paths, id), f)
}

func deleteAccountFile(paths StorePaths, id string) error {
	if err := validateAccountID(id); err != nil {
		return err
	}
	err := os.Remove(accountPath(paths, id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func newAccountFile(spec AccountSpec) AccountFile {
	offline := account.Presence{Type: "offline", Status: "offline"}
	return AccountFile{
		Version:              1,
		Enabled:              !spec.Disabled,
		ConnectionManager:    spec.ConnectionManager,
		Protocol:             spec.Protocol,
		DisplayName:          spec.DisplayName,
		Nickname:             spec.Nickname,
		ConnectAutomatically: spec.ConnectAutomatically,
		AutomaticPresence:    account.Presence{Type: "available", Status: "available"},
		CurrentPresence:      offline,
		RequestedPresence:    offline,
		ConnectionStatus:     string(account.StatusDisconnected),
	}
}
