package model

import (
	"fmt"
	"strconv"
	"strings"
)

// toBool follows variant conversion rules: empty strings, "0" and "false"
// are false, numbers are true when non-zero, nil is false.
func toBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s != "" && s != "0" && s != "false"
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case fmt.Stringer:
		return toBool(v.String())
	default:
		return false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// DisplayText renders a cell value for text output. Absent values render as
// an empty string.
func DisplayText(value any) string {
	return toString(value)
}
