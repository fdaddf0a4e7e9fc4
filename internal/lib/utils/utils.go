// Package utils contains small helpers shared by the form handlers.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// NormalizeText lowercases s and collapses every run of whitespace into a
// single space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DedupHash fingerprints a form submission so a double click or a resend of
// the same message on the same UTC day maps to one row. The same message
// on a later day hashes differently.
func DedupHash(email, message string, at time.Time) string {
	key := strings.ToLower(strings.TrimSpace(email)) + "|" + NormalizeText(message) + "|" + at.UTC().Format(time.DateOnly)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

var linkPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// CountLinks counts URLs in free text.
func CountLinks(s string) int {
	return len(linkPattern.FindAllStringIndex(s, -1))
}

// Optional returns nil for blank strings so they are stored as NULL.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FirstName returns the first word of a full name.
func FirstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
