package utils

import "strings"

// IsTruthy parses a permissive boolean. Empty or unrecognized input
// returns def.
func IsTruthy(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y", "on", "enabled":
		return true
	case "0", "false", "f", "no", "n", "off", "disabled":
		return false
	default:
		return def
	}
}
