package service

import (
	"crypto/rand"
	"fmt"
)

const (
	secretCodeLength   = 8
	secretCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateSecretCode returns a random fixed-length linking code drawn
// from the uppercase-alphanumeric alphabet. Codes are not checked for
// uniqueness against existing users; at two users per pair the
// collision probability is accepted.
func GenerateSecretCode() (string, error) {
	buf := make([]byte, secretCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = secretCodeAlphabet[int(b)%len(secretCodeAlphabet)]
	}
	return string(buf), nil
}
