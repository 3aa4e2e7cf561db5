package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key derivation for logical registry requests. Identical parameters map
// to identical keys; distinct parameters map to distinct keys (exactly for
// short inputs, with overwhelming probability for hashed long inputs).

// maxRawKey bounds the un-hashed portion of a key. Longer inputs are
// replaced with their SHA-256 digest to keep keys filesystem- and
// redis-friendly.
const maxRawKey = 128

// SearchKey derives the cache key for a server search request.
func SearchKey(term string) string {
	return "search:" + sanitize(term)
}

// ServerKey derives the cache key for a server-by-ID request.
func ServerKey(id string) string {
	return "server:" + sanitize(id)
}

// ServerNameKey derives the cache key for a server-by-name request.
func ServerNameKey(name string) string {
	return "server-name:" + sanitize(name)
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > maxRawKey || strings.ContainsAny(s, " \t\n") {
		return Hash([]byte(s))
	}
	return s
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
