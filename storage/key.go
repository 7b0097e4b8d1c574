package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key is the cache key of a text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
