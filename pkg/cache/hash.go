package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
)

// Fingerprint returns the cache key of req.
// It covers the method, the full URL and the Accept and Authorization headers,
// so responses fetched with different credentials or media types never mix.
func Fingerprint(req *http.Request) string {
	parts := []string{
		req.Method,
		req.URL.String(),
		req.Header.Get("Accept"),
		req.Header.Get("Authorization"),
	}
	data, _ := json.Marshal(parts)
	return Hash(data)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
