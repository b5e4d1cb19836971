package common

import (
	"crypto/rand"
)

// GenerateRandBytes fills a fresh slice of n bytes from crypto/rand.
func GenerateRandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WipeByteArray overwrites b with zeros. Used for plaintext passwords read
// from the terminal and for intermediate key material.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
