package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Connection managers that ship a dedicated implementation for a protocol.
// Everything else goes through the libpurple bridge.
var defaultConnectionManagers = map[string]string{
	"jabber":     "gabble",
	"local-xmpp": "salut",
	"irc":        "idle",
	"sip":        "rakia",
}

const fallbackConnectionManager = "haze"

func defaultConnectionManager(protocol string) string {
	if cm, ok := defaultConnectionManagers[protocol]; ok {
		return cm
	}
	return fallbackConnectionManager
}

// newAccountID derives "<cm>-<protocol>-<8 hex>" for accounts created
// without an explicit id.
func newAccountID(cm, protocol string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", cm, protocol, suffix)
}

func accountObjectPath(cm, protocol, id string) string {
	return fmt.Sprintf("/org/freedesktop/Telepathy/Account/%s/%s/%s", cm, protocol, escapePathElement(id))
}

// escapePathElement maps characters that are not valid in an object path
// element to "_xx" hex escapes.
func escapePathElement(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02x", c)
		}
	}
	return b.String()
}

// normalizeAccountSpec fills defaults and validates names.
func normalizeAccountSpec(spec AccountSpec) (AccountSpec, error) {
	spec.Protocol = strings.ToLower(strings.TrimSpace(spec.Protocol))
	if err := validateProtocolName("protocol", spec.Protocol); err != nil {
		return spec, err
	}
	spec.ConnectionManager = strings.ToLower(strings.TrimSpace(spec.ConnectionManager))
	if spec.ConnectionManager == "" {
		spec.ConnectionManager = defaultConnectionManager(spec.Protocol)
	}
	if err := validateProtocolName("connection manager", spec.ConnectionManager); err != nil {
		return spec, err
	}
	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		spec.ID = newAccountID(spec.ConnectionManager, spec.Protocol)
	}
	if err := validateAccountID(spec.ID); err != nil {
		return spec, err
	}
	if strings.TrimSpace(spec.DisplayName) == "" {
		spec.DisplayName = spec.ID
	}
	return spec, nil
}
