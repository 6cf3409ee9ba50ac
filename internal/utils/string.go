package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// KeyNormalization selects the clean-ups NormalizeKey applies.
type KeyNormalization struct {
	// NFC composes combining sequences so "é" and "é" compare equal.
	NFC bool
	// FoldCase lowercases the key.
	FoldCase bool
	// CollapseSpace trims the key and squeezes inner whitespace runs to a
	// single space.
	CollapseSpace bool
}

// Enabled reports whether any clean-up is selected.
func (n KeyNormalization) Enabled() bool {
	return n.NFC || n.FoldCase || n.CollapseSpace
}

// NormalizeKey applies the selected clean-ups to s.
func NormalizeKey(s string, n KeyNormalization) string {
	if n.NFC {
		s = norm.NFC.String(s)
	}
	if n.FoldCase {
		s = strings.ToLower(s)
	}
	if n.CollapseSpace {
		s = collapseSpace(s)
	}
	return s
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TrimLineEnding strips one trailing "\n" or "\r\n".
func TrimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
