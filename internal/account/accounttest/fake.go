// Package accounttest provides an in-memory account manager for tests.
package accounttest

import (
	"fmt"
	"sync"

	"acctview/internal/account"
	"acctview/internal/dispatch"
)

// Call records a mutating call made on a FakeAccount.
type Call struct {
	Method string
	Value  any
}

type connection string

func (c connection) ObjectPath() string { return string(c) }

// FakeAccount is a mutable in-memory account. Setters apply on the next
// dispatcher turn and then emit the matching signal, mimicking a framework
// that confirms writes asynchronously.
type FakeAccount struct {
	d dispatch.Dispatcher

	mu          sync.Mutex
	calls       []Call
	id          string
	valid       bool
	enabled     bool
	cm          string
	protocol    string
	displayName string
	nickname    string
	autoConnect bool
	automatic   account.Presence
	current     account.Presence
	requested   account.Presence
	changing    bool
	status      account.ConnectionStatus
	connPath    string

	stateChanged       account.Signal[bool]
	displayNameChanged account.Signal[string]
	nicknameChanged    account.Signal[string]
}

// NewAccount returns a valid, enabled, disconnected jabber account.
func NewAccount(d dispatch.Dispatcher, id, displayName string) *FakeAccount {
	offline := account.Presence{Type: "offline", Status: "offline"}
	return &FakeAccount{
		d:           d,
		id:          id,
		valid:       true,
		enabled:     true,
		cm:          "gabble",
		protocol:    "jabber",
		displayName: displayName,
		nickname:    id,
		automatic:   account.Presence{Type: "available", Status: "available"},
		current:     offline,
		requested:   offline,
		status:      account.StatusDisconnected,
	}
}

func (a *FakeAccount) ObjectPath() string {
	return fmt.Sprintf("/org/freedesktop/Telepathy/Account/%s/%s/%s", a.cm, a.protocol, a.id)
}

func (a *FakeAccount) IsValidAccount() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.valid
}

func (a *FakeAccount) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

func (a *FakeAccount) CMName() string       { return a.cm }
func (a *FakeAccount) ProtocolName() string { return a.protocol }

func (a *FakeAccount) DisplayName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.displayName
}

func (a *FakeAccount) Nickname() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nickname
}

func (a *FakeAccount) ConnectsAutomatically() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.autoConnect
}

func (a *FakeAccount) AutomaticPresence() account.Presence {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.automatic
}

func (a *FakeAccount) CurrentPresence() account.Presence {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *FakeAccount) RequestedPresence() account.Presence {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requested
}

func (a *FakeAccount) IsChangingPresence() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.changing
}

func (a *FakeAccount) ConnectionStatus() account.ConnectionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *FakeAccount) Connection() account.Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.connPath == "" {
		return nil
	}
	return connection(a.connPath)
}

func (a *FakeAccount) StateChanged() *account.Signal[bool]         { return &a.stateChanged }
func (a *FakeAccount) DisplayNameChanged() *account.Signal[string] { return &a.displayNameChanged }
func (a *FakeAccount) NicknameChanged() *account.Signal[string]    { return &a.nicknameChanged }

func (a *FakeAccount) SetEnabled(enabled bool) *account.PendingOperation {
	a.record("SetEnabled", enabled)
	return a.apply(func() bool {
		changed := a.enabled != enabled
		a.enabled = enabled
		return changed
	}, func() { a.stateChanged.Emit(enabled) })
}

func (a *FakeAccount) SetDisplayName(name string) *account.PendingOperation {
	a.record("SetDisplayName", name)
	return a.apply(func() bool {
		changed := a.displayName != name
		a.displayName = name
		return changed
	}, func() { a.displayNameChanged.Emit(name) })
}

func (a *FakeAccount) SetNickname(nickname string) *account.PendingOperation {
	a.record("SetNickname", nickname)
	return a.apply(func() bool {
		changed := a.nickname != nickname
		a.nickname = nickname
		return changed
	}, func() { a.nicknameChanged.Emit(nickname) })
}

func (a *FakeAccount) record(method string, value any) {
	a.mu.Lock()
	a.calls = append(a.calls, Call{Method: method, Value: value})
	a.mu.Unlock()
}

func (a *FakeAccount) apply(mutate func() bool, notify func()) *account.PendingOperation {
	op := account.NewPendingOperation(a.d)
	a.d.Post(func() {
		a.mu.Lock()
		changed := mutate()
		a.mu.Unlock()
		if changed {
			notify()
		}
		op.Finish(nil)
	})
	return op
}

// Calls returns the mutating calls issued so far.
func (a *FakeAccount) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// SetConnection attaches a live connection path, or detaches with "".
func (a *FakeAccount) SetConnection(path string, status account.ConnectionStatus) {
	a.mu.Lock()
	a.connPath = path
	a.status = status
	a.mu.Unlock()
}

// SetPresence sets the current presence without emitting any signal.
func (a *FakeAccount) SetPresence(current account.Presence, changing bool) {
	a.mu.Lock()
	a.current = current
	a.changing = changing
	a.mu.Unlock()
}

// Invalidate marks the account invalid and emits StateChanged(false).
func (a *FakeAccount) Invalidate() {
	a.mu.Lock()
	a.valid = false
	a.mu.Unlock()
	a.stateChanged.Emit(false)
}

// SignalSubscribers reports live handler counts for the three change signals.
func (a *FakeAccount) SignalSubscribers() (state, displayName, nickname int) {
	return a.stateChanged.Subscribers(), a.displayNameChanged.Subscribers(), a.nicknameChanged.Subscribers()
}

// FakeManager is an in-memory account.Manager.
type FakeManager struct {
	d dispatch.Dispatcher

	mu       sync.Mutex
	accounts []*FakeAccount
	ready    *account.PendingOperation
	readyErr error

	newAccount account.Signal[account.Account]
}

func NewManager(d dispatch.Dispatcher, accounts ...*FakeAccount) *FakeManager {
	return &FakeManager{d: d, accounts: accounts}
}

// FailReadiness makes BecomeReady complete with err.
func (m *FakeManager) FailReadiness(err error) {
	m.readyErr = err
}

// BecomeReady completes on the next dispatcher turn.
func (m *FakeManager) BecomeReady() *account.PendingOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready != nil {
		return m.ready
	}
	op := account.NewPendingOperation(m.d)
	err := m.readyErr
	m.d.Post(func() { op.Finish(err) })
	m.ready = op
	return op
}

func (m *FakeManager) AllAccounts() []account.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]account.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out
}

func (m *FakeManager) NewAccount() *account.Signal[account.Account] {
	return &m.newAccount
}

// Add appends a to the account set and emits NewAccount.
func (m *FakeManager) Add(a *FakeAccount) {
	m.mu.Lock()
	m.accounts = append(m.accounts, a)
	m.mu.Unlock()
	m.newAccount.Emit(a)
}

// Remove drops a from the account set and emits StateChanged(false) on it.
func (m *FakeManager) Remove(a *FakeAccount) {
	m.mu.Lock()
	for i, existing := range m.accounts {
		if existing == a {
			m.accounts = append(m.accounts[:i:i], m.accounts[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	a.Invalidate()
}
