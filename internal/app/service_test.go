package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"acctview/internal/dispatch"
	"acctview/internal/model"
)

func seedAccount(t *testing.T, dir, id, displayName string) {
	t.Helper()
	paths, err := resolveStorePaths(dir)
	if err != nil {
		t.Fatalf("resolveStorePaths failed: %v", err)
	}
	f := newAccountFile(AccountSpec{
		ID:                id,
		Protocol:          "jabber",
		ConnectionManager: "gabble",
		DisplayName:       displayName,
		Nickname:          id,
	})
	if err := saveAccountFile(paths, id, f); err != nil {
		t.Fatalf("saveAccountFile failed: %v", err)
	}
}

func openTestService(t *testing.T, dir string, watch bool) *Service {
	t.Helper()
	svc, err := OpenService(context.Background(), ServiceOptions{
		AccountsDir:   dir,
		Watch:         watch,
		WatchDebounce: 20 * time.Millisecond,
		Timeout:       5 * time.Second,
	})
	if err != nil {
		t.Fatalf("OpenService failed: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func cell(t *testing.T, row Row, column model.Column) any {
	t.Helper()
	if len(row.Cells) != model.ColumnCount {
		t.Fatalf("row %s has %d cells, want %d", row.Account, len(row.Cells), model.ColumnCount)
	}
	return row.Cells[column]
}

func TestOpenServiceEmptyDirIsReady(t *testing.T) {
	svc := openTestService(t, filepath.Join(t.TempDir(), "missing"), false)

	status := svc.Status()
	if !status.Ready {
		t.Fatalf("expected ready service")
	}
	if status.AccountCount != 0 || len(svc.Rows()) != 0 {
		t.Fatalf("expected no accounts, got %d", status.AccountCount)
	}
}

func TestOpenServiceFollowsRecordedOrder(t *testing.T) {
	dir := t.TempDir()
	seedAccount(t, dir, "alice", "Alice")
	seedAccount(t, dir, "bob", "Bob")
	seedAccount(t, dir, "carol", "Carol")
	paths, _ := resolveStorePaths(dir)
	if err := saveState(paths, StateFile{Order: []string{"carol", "alice"}}); err != nil {
		t.Fatalf("saveState failed: %v", err)
	}

	svc := openTestService(t, dir, false)
	rows := svc.Rows()
	got := []string{}
	for _, row := range rows {
		got = append(got, row.Account)
	}
	want := []string{"carol", "alice", "bob"}
	if len(got) != len(want) {
		t.Fatalf("unexpected rows: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v, want %v", got, want)
		}
	}
	if name := cell(t, rows[0], model.ColumnDisplayName); name != "Carol" {
		t.Fatalf("unexpected display name: %v", name)
	}
	if cm := cell(t, rows[0], model.ColumnConnectionManager); cm != "gabble" {
		t.Fatalf("unexpected connection manager: %v", cm)
	}
	if conn := cell(t, rows[0], model.ColumnConnection); conn != nil {
		t.Fatalf("expected no connection, got %v", conn)
	}
}

func TestServiceHeaders(t *testing.T) {
	svc := openTestService(t, t.TempDir(), false)
	headers := svc.Headers()
	if len(headers) != model.ColumnCount {
		t.Fatalf("expected %d headers, got %d", model.ColumnCount, len(headers))
	}
	if headers[0] != "Valid" || headers[12] != "Connection" {
		t.Fatalf("unexpected headers: %v", headers)
	}
}

func TestServiceSetDisplayNamePersists(t *testing.T) {
	dir := t.TempDir()
	seedAccount(t, dir, "alice", "Alice")
	svc := openTestService(t, dir, false)

	if err := svc.Set(context.Background(), "alice", "Display name", "Alice Liddell"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if name := cell(t, svc.Rows()[0], model.ColumnDisplayName); name != "Alice Liddell" {
		t.Fatalf("model not refreshed: %v", name)
	}

	f, err := loadAccountFile(svc.Paths(), "alice")
	if err != nil {
		t.Fatalf("loadAccountFile failed: %v", err)
	}
	if f.DisplayName != "Alice Liddell" {
		t.Fatalf("file not updated: %q", f.DisplayName)
	}
}

func TestServiceSetEnabledByIndex(t *testing.T) {
	dir := t.TempDir()
	seedAccount(t, dir, "alice", "Alice")
	svc := openTestService(t, dir, false)

	if err := svc.Set(context.Background(), "0", "1", "off"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if enabled := cell(t, svc.Rows()[0], model.ColumnEnabled); enabled != false {
		t.Fatalf("expected disabled, got %v", enabled)
	}
	if status := svc.Status(); status.Enabled != 0 {
		t.Fatalf("expected no enabled accounts, got %d", status.Enabled)
	}
}

func TestServiceSetRejections(t *testing.T) {
	dir := t.TempDir()
	seedAccount(t, dir, "alice", "Alice")
	svc := openTestService(t, dir, false)

	cases := []struct {
		name   string
		row    string
		column string
		value  string
	}{
		{name: "read-only column", row: "alice", column: "protocol", value: "irc"},
		{name: "unknown column", row: "alice", column: "colour", value: "x"},
		{name: "unknown account", row: "mallory", column: "nickname", value: "x"},
		{name: "row out of range", row: "5", column: "nickname", value: "x"},
		{name: "bad boolean", row: "alice", column: "enabled", value: "maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Set(context.Background(), tc.row, tc.column, tc.value)
			if err == nil {
				t.Fatalf("expected error")
			}
			if code := ExitCode(err); code != ExitUserError {
				t.Fatalf("unexpected exit code %d: %v", code, err)
			}
		})
	}
}

func TestServiceCreateAndRemove(t *testing.T) {
	svc := openTestService(t, t.TempDir(), false)

	created, err := svc.Create(context.Background(), AccountSpec{ID: "alice", Protocol: "jabber"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ConnectionManager != "gabble" || created.DisplayName != "alice" {
		t.Fatalf("unexpected defaults: %+v", created)
	}
	rows := svc.Rows()
	if len(rows) != 1 || rows[0].Account != "alice" {
		t.Fatalf("unexpected rows after create: %+v", rows)
	}
	if valid := cell(t, rows[0], model.ColumnValid); valid != true {
		t.Fatalf("expected valid account")
	}

	if _, err := svc.Create(context.Background(), AccountSpec{ID: "alice", Protocol: "jabber"}); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}

	if err := svc.Remove(context.Background(), "alice"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(svc.Rows()) != 0 {
		t.Fatalf("expected no rows after remove")
	}
	if _, err := os.Stat(accountPath(svc.Paths(), "alice")); !os.IsNotExist(err) {
		t.Fatalf("expected account file to be gone, got %v", err)
	}
	state, err := loadState(svc.Paths())
	if err != nil {
		t.Fatalf("loadState failed: %v", err)
	}
	if len(state.Order) != 0 {
		t.Fatalf("expected empty order, got %v", state.Order)
	}
}

func TestServiceRemoveUnknownAccount(t *testing.T) {
	svc := openTestService(t, t.TempDir(), false)
	if err := svc.Remove(context.Background(), "ghost"); ExitCode(err) != ExitUserError {
		t.Fatalf("expected user error, got %v", err)
	}
}

func TestServiceStatusReportsInvalidAccounts(t *testing.T) {
	dir := t.TempDir()
	seedAccount(t, dir, "alice", "Alice")
	if err := os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("enabled = [\n"), 0o600); err != nil {
		t.Fatalf("write broken file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "partial.toml"), []byte("enabled = true\ndisplay_name = \"Half\"\n"), 0o600); err != nil {
		t.Fatalf("write partial file: %v", err)
	}

	svc := openTestService(t, dir, false)
	status := svc.Status()
	if status.AccountCount != 3 {
		t.Fatalf("expected 3 accounts, got %d", status.AccountCount)
	}
	if len(status.Invalid) != 2 || status.Invalid[0] != "broken" || status.Invalid[1] != "partial" {
		t.Fatalf("unexpected invalid list: %v", status.Invalid)
	}
	if status.Enabled != 2 {
		t.Fatalf("expected 2 enabled accounts, got %d", status.Enabled)
	}
}

func TestServiceWatchPicksUpExternalChanges(t *testing.T) {
	dir := t.TempDir()
	seedAccount(t, dir, "alice", "Alice")
	svc := openTestService(t, dir, true)

	seedAccount(t, dir, "bob", "Bob")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := dispatch.DrainUntil(ctx, svc.Queue(), func() bool { return svc.Model().RowCount() == 2 })
	if err != nil {
		t.Fatalf("new account not picked up: %v", err)
	}

	paths := svc.Paths()
	f, _ := loadAccountFile(paths, "alice")
	f.Nickname = "ally"
	if err := saveAccountFile(paths, "alice", f); err != nil {
		t.Fatalf("saveAccountFile failed: %v", err)
	}
	err = dispatch.DrainUntil(ctx, svc.Queue(), func() bool {
		return svc.Model().Data(0, model.ColumnNickname, model.DisplayRole) == "ally"
	})
	if err != nil {
		t.Fatalf("nickname change not picked up: %v", err)
	}
}

func TestServiceWatchReportsResets(t *testing.T) {
	dir := t.TempDir()
	seedAccount(t, dir, "alice", "Alice")
	svc := openTestService(t, dir, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var seen [][]Row
	err := svc.Watch(ctx, func(rows []Row) {
		seen = append(seen, rows)
		switch len(seen) {
		case 1:
			if !svc.Model().SetData(0, model.ColumnDisplayName, "Renamed", model.EditRole) {
				t.Errorf("SetData rejected")
				cancel()
			}
		case 2:
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected initial rows plus one reset, got %d", len(seen))
	}
	if name := cell(t, seen[1][0], model.ColumnDisplayName); name != "Renamed" {
		t.Fatalf("unexpected display name after reset: %v", name)
	}
}

func TestResolveColumn(t *testing.T) {
	if column, err := ResolveColumn("Nick name"); err != nil || column != model.ColumnNickname {
		t.Fatalf("unexpected result: %v %v", column, err)
	}
	if column, err := ResolveColumn("4"); err != nil || column != model.ColumnDisplayName {
		t.Fatalf("unexpected result: %v %v", column, err)
	}
	if _, err := ResolveColumn("13"); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}
