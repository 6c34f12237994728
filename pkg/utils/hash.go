package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns a stable hex digest used for cache keys.
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
