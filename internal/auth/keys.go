// Package auth holds the shared server-key helpers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateKey returns a new random 64-character hex server key.
func GenerateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// VerifyKey compares a presented key against the configured one in constant
// time.
func VerifyKey(presented, configured string) bool {
	presented = strings.TrimSpace(presented)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) == 1
}
