package app

import (
	"sync"

	"acctview/internal/account"
)

type dirConnection string

func (c dirConnection) ObjectPath() string { return string(c) }

// dirAccount is one account file as seen by the manager.
type dirAccount struct {
	m  *DirManager
	id string

	mu    sync.RWMutex
	file  AccountFile
	valid bool

	stateChanged       account.Signal[bool]
	displayNameChanged account.Signal[string]
	nicknameChanged    account.Signal[string]
}

func newDirAccount(m *DirManager, id string, f AccountFile, valid bool) *dirAccount {
	return &dirAccount{m: m, id: id, file: f, valid: valid}
}

func fileValid(f AccountFile) bool {
	return f.ConnectionManager != "" && f.Protocol != ""
}

func (a *dirAccount) ID() string { return a.id }

func (a *dirAccount) snapshot() (AccountFile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.file, a.valid
}

func (a *dirAccount) ObjectPath() string {
	f, _ := a.snapshot()
	return accountObjectPath(firstNonEmpty(f.ConnectionManager, "unknown"), firstNonEmpty(f.Protocol, "unknown"), a.id)
}

func (a *dirAccount) IsValidAccount() bool {
	_, valid := a.snapshot()
	return valid
}

func (a *dirAccount) IsEnabled() bool {
	f, _ := a.snapshot()
	return f.Enabled
}

func (a *dirAccount) CMName() string {
	f, _ := a.snapshot()
	return f.ConnectionManager
}

func (a *dirAccount) ProtocolName() string {
	f, _ := a.snapshot()
	return f.Protocol
}

func (a *dirAccount) DisplayName() string {
	f, _ := a.snapshot()
	return f.DisplayName
}

func (a *dirAccount) Nickname() string {
	f, _ := a.snapshot()
	return f.Nickname
}

func (a *dirAccount) ConnectsAutomatically() bool {
	f, _ := a.snapshot()
	return f.ConnectAutomatically
}

func (a *dirAccount) AutomaticPresence() account.Presence {
	f, _ := a.snapshot()
	return f.AutomaticPresence
}

func (a *dirAccount) CurrentPresence() account.Presence {
	f, _ := a.snapshot()
	return f.CurrentPresence
}

func (a *dirAccount) RequestedPresence() account.Presence {
	f, _ := a.snapshot()
	return f.RequestedPresence
}

func (a *dirAccount) IsChangingPresence() bool {
	f, _ := a.snapshot()
	return f.ChangingPresence
}

// ConnectionStatus reports disconnected for values it does not recognise.
func (a *dirAccount) ConnectionStatus() account.ConnectionStatus {
	f, _ := a.snapshot()
	status, _ := account.ParseConnectionStatus(f.ConnectionStatus)
	return status
}

func (a *dirAccount) Connection() account.Connection {
	f, _ := a.snapshot()
	if f.Connection == "" {
		return nil
	}
	return dirConnection(f.Connection)
}

func (a *dirAccount) SetEnabled(enabled bool) *account.PendingOperation {
	return a.m.write(a, func(f *AccountFile) { f.Enabled = enabled })
}

func (a *dirAccount) SetDisplayName(name string) *account.PendingOperation {
	return a.m.write(a, func(f *AccountFile) { f.DisplayName = name })
}

func (a *dirAccount) SetNickname(nickname string) *account.PendingOperation {
	return a.m.write(a, func(f *AccountFile) { f.Nickname = nickname })
}

func (a *dirAccount) StateChanged() *account.Signal[bool]         { return &a.stateChanged }
func (a *dirAccount) DisplayNameChanged() *account.Signal[string] { return &a.displayNameChanged }
func (a *dirAccount) NicknameChanged() *account.Signal[string]    { return &a.nicknameChanged }

// update stores f and returns the emissions its differences call for. The
// caller runs them after releasing any manager lock.
func (a *dirAccount) update(f AccountFile, valid bool) []func() {
	a.mu.Lock()
	old, oldValid := a.file, a.valid
	a.file, a.valid = f, valid
	a.mu.Unlock()

	var emits []func()
	if old.Enabled != f.Enabled || oldValid != valid {
		enabled := f.Enabled
		emits = append(emits, func() { a.stateChanged.Emit(enabled) })
	}
	if old.DisplayName != f.DisplayName {
		name := f.DisplayName
		emits = append(emits, func() { a.displayNameChanged.Emit(name) })
	}
	if old.Nickname != f.Nickname {
		nickname := f.Nickname
		emits = append(emits, func() { a.nicknameChanged.Emit(nickname) })
	}
	return emits
}

// invalidate marks a removed account and tells holders to let go of it.
func (a *dirAccount) invalidate() {
	a.mu.Lock()
	a.valid = false
	a.mu.Unlock()
	a.stateChanged.Emit(false)
}
