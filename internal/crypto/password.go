package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters per RFC 9106.
const (
	argonMemory      = 64 * 1024 // KiB
	argonIterations  = 1
	argonParallelism = 4
	argonKeyLength   = 32

	// SaltLength is the size of the random salt stored alongside each hash.
	SaltLength = 32
)

// GenerateSalt returns a cryptographically random salt of the given length.
func GenerateSalt(length int) ([]byte, error) {
	salt := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// HashPassword derives an Argon2id digest of an account password.
func HashPassword(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		argonIterations,
		argonMemory,
		argonParallelism,
		argonKeyLength,
	)
}

// VerifyPassword reports whether password matches the stored digest.
// The comparison is constant-time.
func VerifyPassword(password string, salt, expected []byte) bool {
	digest := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(digest, expected) == 1
}
