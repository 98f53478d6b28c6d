// Package hasher implements one-way password hashing with Argon2id.
//
// Hashes are stored in PHC form:
//
//	$argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<hash>
//
// Cost parameters are read back from the stored string on verification, so
// changing the configured costs does not invalidate existing hashes.
package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"breate/internal/config"

	"golang.org/x/crypto/argon2"
)

const (
	phcID       = "argon2id"
	phcVersion  = "v=19"
	maxKeyBytes = 1024
	maxMemory   = 1 << 20
	maxPasses   = 64
)

type Argon2 struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

func New(cfg config.HasherConfig) *Argon2 {
	h := &Argon2{
		memory:      cfg.Memory,
		iterations:  cfg.Iterations,
		parallelism: cfg.Parallelism,
		saltLength:  cfg.SaltLength,
		keyLength:   cfg.KeyLength,
	}

	if h.memory == 0 {
		h.memory = 19 * 1024
	}
	if h.iterations == 0 {
		h.iterations = 2
	}
	if h.parallelism == 0 {
		h.parallelism = 1
	}
	if h.saltLength == 0 {
		h.saltLength = 16
	}
	if h.keyLength == 0 {
		h.keyLength = 32
	}

	return h
}

// Hash returns a salted PHC-encoded Argon2id hash of plain.
func (h *Argon2) Hash(plain string) (string, error) {
	const op = "hasher.Argon2.Hash"

	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := argon2.IDKey([]byte(plain), salt, h.iterations, h.memory, h.parallelism, h.keyLength)

	return fmt.Sprintf(
		"$%s$%s$m=%d,t=%d,p=%d$%s$%s",
		phcID,
		phcVersion,
		h.memory,
		h.iterations,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches encoded. Malformed input yields false.
func (h *Argon2) Verify(plain, encoded string) bool {
	parts := strings.Split(encoded, "$")
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 || parts[0] != "" || parts[1] != phcID || parts[2] != phcVersion {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}
	// Sscanf stops at the last verb and ignores whatever follows it.
	if parts[3] != fmt.Sprintf("m=%d,t=%d,p=%d", memory, iterations, parallelism) {
		return false
	}
	if memory == 0 || iterations == 0 || parallelism == 0 || memory > maxMemory || iterations > maxPasses {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > maxKeyBytes {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, iterations, memory, parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}
