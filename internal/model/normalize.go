package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName canonicalizes project, task, and tag names before they
// are stored: NFC normalization plus surrounding-whitespace trim.
// Uniqueness constraints (tags.name) apply to the normalized form, so
// visually identical names cannot coexist under different encodings.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
