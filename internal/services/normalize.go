package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Normalize canonicalizes question text for duplicate comparison: runs of
// whitespace collapse to a single space, ASCII letters fold to lower case
// (non-ASCII passes through unchanged), and leading/trailing punctuation and
// whitespace are stripped. Deterministic, total, and idempotent; the duplicate
// filter and ContentHash both rely on it so every caller agrees on what "the
// same text" means.
func Normalize(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	s = strings.Map(asciiLower, s)
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// ContentHash is a stable hash of the normalized text. Two questions with
// equal ContentHash are duplicates regardless of any other field.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
