// Package textutil holds string helpers shared by the roster code.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SortKey folds s for accent-insensitive ordering: NFD decomposition,
// non-spacing marks dropped, lower-cased. "García" and "Garcia" share a key.
func SortKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// NilIfBlank trims s and returns nil when nothing is left.
func NilIfBlank(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
