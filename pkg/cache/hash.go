package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key derives a namespaced cache key from an identifying hash and the
// option values that shaped the entry. Two entries share a key only
// when the prefix, the hash, and every option match.
func Key(prefix, contentHash string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s:%s", prefix, contentHash, hex.EncodeToString(hash[:]))
}

// ArtifactKey is Key in the rendered-artifact namespace: the source
// document hash plus the rendering options that shaped the output.
func ArtifactKey(contentHash string, parts ...interface{}) string {
	return Key("artifact", contentHash, parts...)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
