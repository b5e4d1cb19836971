package auth

import (
	"errors"
	"log/slog"
)

const redacted = "[REDACTED]"

// Secrets carries the two process-wide keys. HashKey peppers every stored
// password hash and SigningKey signs bearer tokens. Both are read-only after
// construction; rotating either one requires a restart.
type Secrets struct {
	HashKey    []byte `json:"-"`
	SigningKey []byte `json:"-"`
}

// NewSecrets copies the given keys into a Secrets value.
func NewSecrets(hashKey, signingKey string) (*Secrets, error) {
	if hashKey == "" {
		return nil, errors.New("hash key is empty")
	}
	if signingKey == "" {
		return nil, errors.New("signing key is empty")
	}
	return &Secrets{
		HashKey:    []byte(hashKey),
		SigningKey: []byte(signingKey),
	}, nil
}

func (s *Secrets) String() string { return redacted }

// LogValue keeps the keys out of structured logs.
func (s *Secrets) LogValue() slog.Value { return slog.StringValue(redacted) }
