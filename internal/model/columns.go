package model

import "strings"

// Column indexes the fixed account fields.
type Column int

const (
	ColumnValid Column = iota
	ColumnEnabled
	ColumnConnectionManager
	ColumnProtocolName
	ColumnDisplayName
	ColumnNickname
	ColumnConnectAutomatically
	ColumnAutomaticPresence
	ColumnCurrentPresence
	ColumnRequestedPresence
	ColumnChangingPresence
	ColumnConnectionStatus
	ColumnConnection

	ColumnCount = 13
)

var columnLabels = [ColumnCount]string{
	ColumnValid:                "Valid",
	ColumnEnabled:              "Enabled",
	ColumnConnectionManager:    "Connection manager",
	ColumnProtocolName:         "Protocol name",
	ColumnDisplayName:          "Display name",
	ColumnNickname:             "Nick name",
	ColumnConnectAutomatically: "Connect automatically",
	ColumnAutomaticPresence:    "Automatic presence",
	ColumnCurrentPresence:      "Current presence",
	ColumnRequestedPresence:    "Requested presence",
	ColumnChangingPresence:     "Changing presence",
	ColumnConnectionStatus:     "Connection status",
	ColumnConnection:           "Connection",
}

func (c Column) Valid() bool {
	return c >= 0 && c < ColumnCount
}

// Label returns the header label, or "" for an out-of-range column.
func (c Column) Label() string {
	if !c.Valid() {
		return ""
	}
	return columnLabels[c]
}

func (c Column) String() string {
	return c.Label()
}

// Editable reports whether writes to column are forwarded to the account.
func Editable(column Column) bool {
	switch column {
	case ColumnEnabled, ColumnDisplayName, ColumnNickname:
		return true
	default:
		return false
	}
}

// ParseColumn resolves a column by label, ignoring case, spaces, dashes and
// underscores ("display-name", "DisplayName", "nick_name").
func ParseColumn(raw string) (Column, bool) {
	want := normalizeLabel(raw)
	if want == "" {
		return 0, false
	}
	for c := Column(0); c < ColumnCount; c++ {
		if normalizeLabel(columnLabels[c]) == want {
			return c, true
		}
	}
	switch want {
	case "cm":
		return ColumnConnectionManager, true
	case "protocol":
		return ColumnProtocolName, true
	}
	return 0, false
}

func normalizeLabel(raw string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(raw)))
}

// Role selects which representation of a cell is requested.
type Role int

const (
	DisplayRole Role = iota
	EditRole
	ToolTipRole
	DecorationRole
)

// Orientation selects horizontal (column) or vertical (row) headers.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)
