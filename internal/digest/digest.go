// Package digest provides the hash primitive shared by the commitment,
// merkle, and attestation packages: SHA-256 over concatenated inputs,
// hex-encoded lowercase.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Size is the length of a hex-encoded digest.
const Size = sha256.Size * 2

// Sum hashes the concatenation of parts and returns the lowercase hex digest.
func Sum(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsWellFormed reports whether s looks like a digest produced by Sum.
func IsWellFormed(s string) bool {
	if len(s) != Size {
		return false
	}
	for _, r := range strings.ToLower(s) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
