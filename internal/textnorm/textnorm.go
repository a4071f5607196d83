// Package textnorm canonicalizes free-text merchant and description strings so
// keywords and statement descriptions can be compared by substring.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode compatibility composition (NFKC), which folds
// full-width Latin letters, digits and punctuation to their half-width forms,
// and then lower-cases the result. It never fails; empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.ToLower(norm.NFKC.String(text))
}

// Contains reports whether the normalized form of keyword occurs in the
// normalized form of text. An empty keyword never matches.
func Contains(text, keyword string) bool {
	k := Normalize(keyword)
	if k == "" {
		return false
	}
	return strings.Contains(Normalize(text), k)
}
