package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/argon2"
)

// PasswordHasher turns passwords into storable hashes and checks them.
type PasswordHasher interface {
	// Hash returns an encoded hash of password with a fresh random salt.
	Hash(ctx context.Context, password string) (string, error)

	// Verify reports whether password matches encoded. A mismatch is
	// (false, nil); a hash that cannot be decoded is an error.
	Verify(ctx context.Context, password, encoded string) (bool, error)
}

// Params are the argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the argon2id cost used unless configured otherwise.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Iterations:  1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// upper bound accepted when decoding stored hashes, 1 GiB
const maxMemoryKiB = 1 << 20

// Argon2Hasher hashes HMAC-SHA256(HashKey, password) with argon2id and
// encodes the result as a PHC string:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
type Argon2Hasher struct {
	secrets *Secrets
	params  Params
	runner  *Runner
}

func NewArgon2Hasher(secrets *Secrets, params Params, runner *Runner) *Argon2Hasher {
	return &Argon2Hasher{secrets: secrets, params: params, runner: runner}
}

func (h *Argon2Hasher) Hash(ctx context.Context, password string) (string, error) {
	salt, err := common.GenerateRandBytes(int(h.params.SaltLength))
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", common.ErrHashing, err)
	}

	p := h.params
	return run(ctx, h.runner, func() (string, error) {
		digest := h.derive(password, salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
		return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2.Version, p.Memory, p.Iterations, p.Parallelism,
			base64.RawStdEncoding.EncodeToString(salt),
			base64.RawStdEncoding.EncodeToString(digest),
		), nil
	})
}

func (h *Argon2Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	p, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	return run(ctx, h.runner, func() (bool, error) {
		computed := h.derive(password, salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
		return subtle.ConstantTimeCompare(computed, expected) == 1, nil
	})
}

func (h *Argon2Hasher) derive(password string, salt []byte, t, m uint32, p uint8, keyLen uint32) []byte {
	mac := hmac.New(sha256.New, h.secrets.HashKey)
	mac.Write([]byte(password))
	peppered := mac.Sum(nil)
	defer common.WipeByteArray(peppered)

	return argon2.IDKey(peppered, salt, t, m, p, keyLen)
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, fmt.Errorf("%w: invalid hash format", common.ErrHashing)
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", common.ErrHashing, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %v", common.ErrHashing, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", common.ErrHashing, version)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %v", common.ErrHashing, err)
	}
	if memory == 0 || memory > maxMemoryKiB || iterations == 0 || threads == 0 || threads > 255 {
		return p, nil, nil, fmt.Errorf("%w: params out of range", common.ErrHashing)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, fmt.Errorf("%w: salt encoding", common.ErrHashing)
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return p, nil, nil, fmt.Errorf("%w: digest encoding", common.ErrHashing)
	}

	p = Params{
		Memory:      memory,
		Iterations:  iterations,
		Parallelism: uint8(threads),
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(digest)),
	}
	return p, salt, digest, nil
}
