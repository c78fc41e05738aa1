package app

import "acctview/internal/account"

// AccountFile is the on-disk form of one account, <id>.toml.
type AccountFile struct {
	Version              int              `toml:"version"`
	Enabled              bool             `toml:"enabled"`
	ConnectionManager    string           `toml:"connection_manager"`
	Protocol             string           `toml:"protocol"`
	DisplayName          string           `toml:"display_name"`
	Nickname             string           `toml:"nickname"`
	ConnectAutomatically bool             `toml:"connect_automatically"`
	AutomaticPresence    account.Presence `toml:"automatic_presence"`
	CurrentPresence      account.Presence `toml:"current_presence"`
	RequestedPresence    account.Presence `toml:"requested_presence"`
	ChangingPresence     bool             `toml:"changing_presence"`
	ConnectionStatus     string           `toml:"connection_status,omitempty"`
	Connection           string           `toml:"connection,omitempty"`
}

// StateFile records the manager's account order.
type StateFile struct {
	Version int      `json:"version"`
	Order   []string `json:"order,omitempty"`
}

type StorePaths struct {
	RootDir   string `json:"rootDir"`
	StatePath string `json:"statePath"`
	LockPath  string `json:"lockPath"`
}

// AccountSpec describes an account to create.
type AccountSpec struct {
	ID                   string
	Protocol             string
	ConnectionManager    string
	DisplayName          string
	Nickname             string
	Disabled             bool
	ConnectAutomatically bool
}

// Row is a rendered model row: the account id plus one value per column.
type Row struct {
	Account string `json:"account"`
	Cells   []any  `json:"cells"`
}

type StatusResult struct {
	Paths        StorePaths `json:"paths"`
	Ready        bool       `json:"ready"`
	AccountCount int        `json:"accountCount"`
	Enabled      int        `json:"enabled"`
	Connected    int        `json:"connected"`
	Invalid      []string   `json:"invalid,omitempty"`
}
