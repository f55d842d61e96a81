// Package id generates and checks the opaque identifiers handed out to clients.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SessionPrefix marks interactive session identifiers.
const SessionPrefix = "ses"

// nanoidLength is the length of a default NanoID.
const nanoidLength = 21

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "ses-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewSessionID creates a fresh session identifier.
func NewSessionID() (string, error) {
	return Generate(SessionPrefix)
}

// IsSessionID reports whether s has the shape of an identifier from NewSessionID.
// Cookie values that fail this check are replaced rather than used as store keys.
func IsSessionID(s string) bool {
	rest, ok := strings.CutPrefix(s, SessionPrefix+"-")
	if !ok || len(rest) != nanoidLength {
		return false
	}
	for _, c := range rest {
		if !urlSafe(c) {
			return false
		}
	}
	return true
}

func urlSafe(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}
