package usecase

import (
	"crypto/rand"
	"io"
)

// URL-safe alphabet, 64 symbols so the modulo below introduces no bias.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const cardKeyLength = 16

// generateToken produces an opaque random string of length n. Card keys are
// bearer tokens granting access to a credential, so the source must be
// crypto/rand, never math/rand.
func generateToken(n int) (string, error) {
	buffer := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < n; i++ {
		buffer[i] = tokenAlphabet[int(buffer[i])%len(tokenAlphabet)]
	}
	return string(buffer), nil
}

// generateCardKey creates a fresh card key.
func generateCardKey() (string, error) {
	return generateToken(cardKeyLength)
}

// generateRandomPassword creates the replacement credential used by the
// admin password-reset flow.
func generateRandomPassword() (string, error) {
	return generateToken(12)
}
