// Package util holds small helpers shared by the services.
package util

import (
	"strings"
	"unicode"
)

// CleanLine trims s and drops control and invisible formatting characters,
// so names and titles cannot smuggle zero-width or bidi marks.
func CleanLine(s string) string {
	return clean(s, false)
}

// CleanText is CleanLine for free text: newlines and tabs survive.
func CleanText(s string) string {
	return clean(s, true)
}

func clean(s string, multiline bool) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if multiline && (r == '\n' || r == '\t') {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || isInvisibleUnicode(r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // zero-width space
		'\u200C', // zero-width non-joiner
		'\u200D', // zero-width joiner
		'\u200E', // left-to-right mark
		'\u200F', // right-to-left mark
		'\u2060', // word joiner
		'\uFEFF', // BOM
		'\uFFF9', '\uFFFA', '\uFFFB':
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
