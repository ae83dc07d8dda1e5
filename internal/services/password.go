package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Prefix       = "pbkdf2_sha256"
	pbkdf2DefaultIters = 210000
	pbkdf2SaltLength   = 16
	pbkdf2KeyLength    = 32
)

// PasswordHasher derives and verifies PBKDF2-SHA256 password hashes.
// Encoded form: pbkdf2_sha256$<iterations>$<salt-b64>$<key-b64>.
type PasswordHasher struct {
	iterations int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{iterations: pbkdf2DefaultIters}
}

// Hash derives a salted hash from the plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}

	salt := make([]byte, pbkdf2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.iterations, pbkdf2KeyLength, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		pbkdf2Prefix,
		h.iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives the key and compares in constant time. Malformed or
// unknown encodings verify as false, never panic.
func (h *PasswordHasher) Verify(encoded, password string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != pbkdf2Prefix {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
