package runtime

import "strings"

func parseAssignment(code string) (string, string, bool) {
	name, value, ok := strings.Cut(code, "<-")
	if !ok {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return "", "", false
	}
	return name, value, true
}
