// Package strings holds helpers for list-valued settings.
package strings

import "strings"

// SplitList splits v on sep, trims each element and drops empty and
// repeated elements. Order of first occurrence is kept. Returns nil when
// nothing remains.
func SplitList(v, sep string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(v, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
