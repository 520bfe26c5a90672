// Package textutil normalizes free text before rule matching.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s trimmed, composed to NFC and case folded, so that
// "DECISÃO", "decisão" and a decomposed "decisão" compare equal.
// A cases.Caser is stateful and not safe for concurrent use, so one is
// created per call.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(s))
}

// Contains reports whether the folded form of s contains the folded form of substr.
func Contains(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// FoldSet builds a lookup set of folded values. Blank values are skipped.
func FoldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if f := Fold(v); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
