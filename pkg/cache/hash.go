package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the full hex SHA-256 of data. Stage outputs are keyed by
// the hash of their input, so equal inputs land on the same entry no
// matter which command produced them.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a namespaced key from the hash of its parts. Parts are
// JSON-encoded so URLs, counters, and option structs key uniformly.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
