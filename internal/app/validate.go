package app

import (
	"fmt"
	"regexp"
)

var (
	accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	namePattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

func validateAccountID(id string) error {
	if id == "" {
		return fmt.Errorf("account id is required")
	}
	if !accountIDPattern.MatchString(id) || id[0] == '.' {
		return fmt.Errorf("invalid account id %q (allowed: letters, numbers, ., _, -; no leading .)", id)
	}
	return nil
}

// validateProtocolName checks protocol and connection manager names, which
// appear in object paths.
func validateProtocolName(kind string, name string) error {
	if name == "" {
		return fmt.Errorf("%s is required", kind)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid %s %q (allowed: lowercase letters, numbers, _, -)", kind, name)
	}
	return nil
}
