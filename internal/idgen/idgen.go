// Package idgen provides cryptographically random token generation for
// commitment nonces, attestation secret keys, and player sessions.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// Hex generates a random hex string of the given byte length.
func Hex(numBytes int) string {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Nonce generates a 16-byte commitment nonce (32 hex chars).
func Nonce() string {
	return Hex(16)
}

// SecretKey generates a 32-byte attestation secret (64 hex chars). The
// secret is independent randomness; it is not derived from the commitment
// digest it is later paired with.
func SecretKey() string {
	return Hex(32)
}

// SessionID generates a 16-byte player session identifier.
func SessionID() string {
	return Hex(16)
}
