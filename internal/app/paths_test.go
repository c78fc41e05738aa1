package app

import "testing"

func TestDefaultAccountsDirUsesXDGDataHome(t *testing.T) {
	t.Setenv("HOME", "/tmp/home-default")
	t.Setenv("ACCTVIEW_ACCOUNTS_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	dir, err := DefaultAccountsDir()
	if err != nil {
		t.Fatalf("DefaultAccountsDir failed: %v", err)
	}

	want := "/tmp/xdg-data/acctview/accounts"
	if dir != want {
		t.Fatalf("unexpected dir: got %q, want %q", dir, want)
	}
}

func TestDefaultAccountsDirFallsBackToHome(t *testing.T) {
	t.Setenv("HOME", "/tmp/home-fallback")
	t.Setenv("ACCTVIEW_ACCOUNTS_DIR", "")
	t.Setenv("XDG_DATA_HOME", "")

	dir, err := DefaultAccountsDir()
	if err != nil {
		t.Fatalf("DefaultAccountsDir failed: %v", err)
	}

	want := "/tmp/home-fallback/.local/share/acctview/accounts"
	if dir != want {
		t.Fatalf("unexpected dir: got %q, want %q", dir, want)
	}
}

func TestDefaultAccountsDirOverrideExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/tmp/home-override")
	t.Setenv("ACCTVIEW_ACCOUNTS_DIR", "~/accounts")

	dir, err := DefaultAccountsDir()
	if err != nil {
		t.Fatalf("DefaultAccountsDir failed: %v", err)
	}

	want := "/tmp/home-override/accounts"
	if dir != want {
		t.Fatalf("unexpected dir: got %q, want %q", dir, want)
	}
}

func TestResolveStorePathsExplicitDir(t *testing.T) {
	t.Setenv("HOME", "/tmp/home-explicit")

	paths, err := resolveStorePaths("~/tp")
	if err != nil {
		t.Fatalf("resolveStorePaths failed: %v", err)
	}
	if paths.RootDir != "/tmp/home-explicit/tp" {
		t.Fatalf("unexpected root: %q", paths.RootDir)
	}
	if paths.StatePath != "/tmp/home-explicit/tp/.acctview-state.json" {
		t.Fatalf("unexpected state path: %q", paths.StatePath)
	}
	if paths.LockPath != "/tmp/home-explicit/tp/.acctview.lock" {
		t.Fatalf("unexpected lock path: %q", paths.LockPath)
	}
}
