// Package token mints capability tokens. A token is both the identifier of a
// feed and the only credential needed to modify it, so it has to be
// unguessable.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Length is the size of a rendered token in hex characters.
const Length = sha256.Size * 2

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// New returns a fresh capability token: 32 cryptographically random bytes
// rendered as their SHA-256 hex digest.
func New() (string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to gather randomness: %w", err)
	}

	digest := sha256.Sum256(seed)
	return hex.EncodeToString(digest[:]), nil
}

// Valid reports whether s has the shape of a capability token.
func Valid(s string) bool {
	return tokenPattern.MatchString(s)
}
