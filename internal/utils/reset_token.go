package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateResetToken returns a fresh recovery token and the sha256 hex digest
// stored alongside the user. Only the digest ever touches the database.
func GenerateResetToken() (token string, digest string) {
	token = uuid.NewString()
	return token, HashResetToken(token)
}

// HashResetToken digests a recovery token for storage or lookup.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
