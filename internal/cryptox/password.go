// Package cryptox holds the password hashing used for reviewer accounts.
// Hashes are argon2id in the PHC-style encoding
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	hashTime    uint32 = 3
	hashMemory  uint32 = 64 * 1024
	hashThreads uint8  = 2
	hashKeyLen  uint32 = 32
	hashSaltLen        = 16
)

var ErrInvalidHash = errors.New("invalid password hash")

// HashPassword returns an encoded argon2id hash of password with a fresh
// random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return encode(password, salt, hashTime, hashMemory, hashThreads, hashKeyLen), nil
}

// VerifyPassword checks password against an encoded hash in constant time.
// A hash that cannot be decoded yields ErrInvalidHash.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return false, ErrInvalidHash
	}

	mem, timeCost, threads, err := parseParams(parts[3])
	if err != nil {
		return false, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, ErrInvalidHash
	}

	actual := argon2.IDKey([]byte(password), salt, timeCost, mem, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

func encode(password string, salt []byte, timeCost, mem uint32, threads uint8, keyLen uint32) string {
	sum := argon2.IDKey([]byte(password), salt, timeCost, mem, threads, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, mem, timeCost, threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	)
}

func parseParams(value string) (mem uint32, timeCost uint32, threads uint8, err error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return 0, 0, 0, ErrInvalidHash
	}

	if mem, err = parseUint32(parts[0], "m="); err != nil {
		return 0, 0, 0, err
	}
	if timeCost, err = parseUint32(parts[1], "t="); err != nil {
		return 0, 0, 0, err
	}
	p, err := parseUint32(parts[2], "p=")
	if err != nil || p == 0 || p > 255 {
		return 0, 0, 0, ErrInvalidHash
	}
	if timeCost == 0 {
		return 0, 0, 0, ErrInvalidHash
	}
	return mem, timeCost, uint8(p), nil
}

func parseUint32(value, prefix string) (uint32, error) {
	if !strings.HasPrefix(value, prefix) {
		return 0, ErrInvalidHash
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(value, prefix), 10, 32)
	if err != nil {
		return 0, ErrInvalidHash
	}
	return uint32(v), nil
}
