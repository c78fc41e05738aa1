package account

import "fmt"

// Presence is an account's availability as reported by the manager.
type Presence struct {
	Type    string `json:"type" toml:"type"`
	Status  string `json:"status" toml:"status"`
	Message string `json:"message,omitempty" toml:"message,omitempty"`
}

// ConnectionStatus is the state of an account's connection.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
)

func ParseConnectionStatus(raw string) (ConnectionStatus, error) {
	switch ConnectionStatus(raw) {
	case "", StatusDisconnected:
		return StatusDisconnected, nil
	case StatusConnecting:
		return StatusConnecting, nil
	case StatusConnected:
		return StatusConnected, nil
	default:
		return StatusDisconnected, fmt.Errorf("unknown connection status %q", raw)
	}
}

// Connection is a live connection owned by the framework.
type Connection interface {
	ObjectPath() string
}

// Account is a framework-owned account handle. Holders must not assume they
// control its lifetime, and must disconnect their signal subscriptions
// before dropping it.
type Account interface {
	ObjectPath() string

	IsValidAccount() bool
	IsEnabled() bool
	CMName() string
	ProtocolName() string
	DisplayName() string
	Nickname() string
	ConnectsAutomatically() bool
	AutomaticPresence() Presence
	CurrentPresence() Presence
	RequestedPresence() Presence
	IsChangingPresence() bool
	ConnectionStatus() ConnectionStatus
	// Connection returns nil when the account has no live connection.
	Connection() Connection

	SetEnabled(enabled bool) *PendingOperation
	SetDisplayName(name string) *PendingOperation
	SetNickname(nickname string) *PendingOperation

	StateChanged() *Signal[bool]
	DisplayNameChanged() *Signal[string]
	NicknameChanged() *Signal[string]
}

// Manager owns the account set.
type Manager interface {
	// BecomeReady starts loading the account list. AllAccounts is only
	// meaningful once the returned operation has finished.
	BecomeReady() *PendingOperation
	AllAccounts() []Account
	NewAccount() *Signal[Account]
}
