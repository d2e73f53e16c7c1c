// Package strings holds small string-list helpers used by configuration.
package strings

import "strings"

// DedupeAndTrim trims each value, drops empties and keeps the first
// occurrence of each remaining value. A nil or empty input is returned as is.
//
//	DedupeAndTrim([]string{" k1:9092", "k2:9092", "k1:9092", ""})
//	// []string{"k1:9092", "k2:9092"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
