package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the full 64-character hex SHA-256 of data. Manuscripts, rules
// documents, and DOT output are all addressed by this hash.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a "prefix:digest" cache key from the JSON encoding of parts.
// The full digest is kept; truncating would trade collision resistance for
// nothing at file-cache scale.
func hashKey(prefix string, parts ...any) string {
	encoded, _ := json.Marshal(parts)
	return prefix + ":" + Hash(encoded)
}
