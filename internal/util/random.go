package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const opaqueTokenBytes = 32

func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating random bytes: %w", err)
	}
	return b, nil
}

// NewOpaqueToken returns a 32-byte random token rendered as 64 hex
// characters, the format carried in activation and reset links.
func NewOpaqueToken() (string, error) {
	b, err := RandomBytes(opaqueTokenBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
