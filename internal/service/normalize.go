package service

import "strings"

// Normalize canonicalizes question text for matching and identity: lowercase,
// surrounding whitespace trimmed. It is idempotent and must be applied the
// same way at write time and read time.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}
