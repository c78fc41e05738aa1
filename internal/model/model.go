package model

import (
	"acctview/internal/account"
	"acctview/internal/logging"
)

const subsystem = "model"

// State is the model's readiness.
type State int

const (
	NotReady State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "not ready"
}

// Model is a 13-column table over the manager's accounts. The row set is
// rebuilt from scratch whenever the manager reports a new account or any
// tracked account changes state, display name or nickname. Cell reads query
// the account directly; only the row set is cached.
//
// A Model must only be used from the dispatcher goroutine that delivers the
// manager's notifications.
type Model struct {
	manager account.Manager
	state   State
	closed  bool

	rows    []account.Account
	rowSubs []*account.Subscription

	readySub      *account.Subscription
	newAccountSub *account.Subscription

	aboutToReset account.Signal[struct{}]
	reset        account.Signal[struct{}]
}

// New requests readiness from manager and starts tracking its accounts. The
// model has no rows until readiness completes.
func New(manager account.Manager) *Model {
	m := &Model{manager: manager}
	logging.Debug(subsystem, "update started")
	m.readySub = manager.BecomeReady().OnFinished(m.onReady)
	m.newAccountSub = manager.NewAccount().Connect(m.onNewAccount)
	return m
}

func (m *Model) onReady(op *account.PendingOperation) {
	if err := op.Err(); err != nil {
		logging.Warn(subsystem, "account manager readiness failed: %v", err)
	}
	m.state = Ready
	m.refresh()
}

func (m *Model) onNewAccount(acc account.Account) {
	if m.state != Ready {
		logging.Debug(subsystem, "new account %s before readiness, deferring", acc.ObjectPath())
		return
	}
	logging.Debug(subsystem, "new account %s", acc.ObjectPath())
	m.refresh()
}

// refresh drops every per-account subscription, re-reads the manager's
// account set, subscribes again and announces a structural reset.
func (m *Model) refresh() {
	if m.closed {
		return
	}
	m.aboutToReset.Emit(struct{}{})

	m.disconnectRows()
	m.rows = m.manager.AllAccounts()
	for _, acc := range m.rows {
		if acc == nil {
			continue
		}
		m.rowSubs = append(m.rowSubs,
			acc.StateChanged().Connect(func(bool) { m.refresh() }),
			acc.DisplayNameChanged().Connect(func(string) { m.refresh() }),
			acc.NicknameChanged().Connect(func(string) { m.refresh() }),
		)
	}
	logging.Debug(subsystem, "reset with %d accounts", len(m.rows))

	m.reset.Emit(struct{}{})
}

func (m *Model) disconnectRows() {
	for _, sub := range m.rowSubs {
		sub.Disconnect()
	}
	m.rowSubs = nil
}

// Close releases every subscription the model holds and drops its rows.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.readySub.Disconnect()
	m.newAccountSub.Disconnect()
	m.disconnectRows()
	m.rows = nil
}

func (m *Model) State() State {
	return m.state
}

// OnAboutToReset registers fn to run before the row set is replaced.
func (m *Model) OnAboutToReset(fn func()) *account.Subscription {
	return m.aboutToReset.Connect(func(struct{}) { fn() })
}

// OnReset registers fn to run after the row set has been replaced. Any
// cached row or column positions are invalid at that point.
func (m *Model) OnReset(fn func()) *account.Subscription {
	return m.reset.Connect(func(struct{}) { fn() })
}

func (m *Model) RowCount() int {
	return len(m.rows)
}

func (m *Model) ColumnCount() int {
	return ColumnCount
}

// Account returns the account shown at row, or nil.
func (m *Model) Account(row int) account.Account {
	if row < 0 || row >= len(m.rows) {
		return nil
	}
	return m.rows[row]
}

// Data returns the value of one cell, or nil when the row, column or role
// does not address data.
func (m *Model) Data(row int, column Column, role Role) any {
	if row < 0 || row >= m.RowCount() || !column.Valid() {
		return nil
	}
	if role != DisplayRole && role != EditRole {
		return nil
	}
	acc := m.rows[row]
	if acc == nil {
		return nil
	}

	switch column {
	case ColumnValid:
		return acc.IsValidAccount()
	case ColumnEnabled:
		return acc.IsEnabled()
	case ColumnConnectionManager:
		return acc.CMName()
	case ColumnProtocolName:
		return acc.ProtocolName()
	case ColumnDisplayName:
		return acc.DisplayName()
	case ColumnNickname:
		return acc.Nickname()
	case ColumnConnectAutomatically:
		return acc.ConnectsAutomatically()
	case ColumnAutomaticPresence:
		return acc.AutomaticPresence().Status
	case ColumnCurrentPresence:
		return acc.CurrentPresence().Status
	case ColumnRequestedPresence:
		return acc.RequestedPresence().Status
	case ColumnChangingPresence:
		return acc.IsChangingPresence()
	case ColumnConnectionStatus:
		return acc.ConnectionStatus()
	case ColumnConnection:
		conn := acc.Connection()
		if conn == nil {
			return nil
		}
		return conn.ObjectPath()
	default:
		return nil
	}
}

// SetData forwards an edit to the account at row. It returns true once the
// call is issued; the row set is refreshed later by the account's change
// notification, not here.
func (m *Model) SetData(row int, column Column, value any, role Role) bool {
	_, ok := m.setData(row, column, value, role)
	return ok
}

// SetDataPending is SetData, also returning the framework's operation so
// callers that want confirmation can wait on it.
func (m *Model) SetDataPending(row int, column Column, value any, role Role) (*account.PendingOperation, bool) {
	return m.setData(row, column, value, role)
}

func (m *Model) setData(row int, column Column, value any, role Role) (*account.PendingOperation, bool) {
	if row < 0 || row >= m.RowCount() || !column.Valid() {
		return nil, false
	}
	if role != EditRole || !Editable(column) {
		return nil, false
	}
	acc := m.rows[row]
	if acc == nil {
		return nil, false
	}

	switch column {
	case ColumnEnabled:
		return acc.SetEnabled(toBool(value)), true
	case ColumnDisplayName:
		return acc.SetDisplayName(toString(value)), true
	case ColumnNickname:
		return acc.SetNickname(toString(value)), true
	default:
		return nil, false
	}
}

// HeaderData returns the label of a horizontal header section. Vertical
// headers have no data.
func (m *Model) HeaderData(section int, orientation Orientation, role Role) any {
	if orientation != Horizontal {
		return nil
	}
	label := Column(section).Label()
	if label == "" {
		return nil
	}
	return label
}
