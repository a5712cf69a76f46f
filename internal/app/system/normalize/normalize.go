// Package normalize cleans user-supplied form and query values.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses internal whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a query or form value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Text trims multi-line text and normalizes line endings.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

// Tags splits a comma-separated list into trimmed, lowercased, unique tags.
func Tags(s string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, part := range strings.Split(s, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Subject normalizes a study subject to lowercase words separated by single spaces.
func Subject(s string) string {
	return strings.ToLower(Name(s))
}

// Truncate shortens s to at most n runes, appending "…" when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + "…"
}
