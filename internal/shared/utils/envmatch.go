package utils

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MatchEnv returns the entries of environ ("KEY=value") whose key matches
// any of the glob patterns, keyed by name
func MatchEnv(environ []string, patterns []string) map[string]string {
	out := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, pattern := range patterns {
			if matched, err := doublestar.Match(pattern, key); err == nil && matched {
				out[key] = value
				break
			}
		}
	}
	return out
}

// ParseEnvAssignments parses "A=1,B=2" style ephemeral variable lists.
// Entries without '=' are skipped.
func ParseEnvAssignments(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range SplitList(s) {
		key, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		out[strings.TrimSpace(key)] = value
	}
	return out
}

// SortedKeys returns the keys of m in order
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
