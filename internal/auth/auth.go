// Package auth authenticates players by wallet signature.
//
// A player proves control of an address by signing an arbitrary login
// message with the wallet key (EIP-191 personal message). On success the
// player gets a session from the session manager; no password or API key
// exists anywhere in the system.
package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrInvalidSignature is returned when a signature does not recover to
	// the claimed address.
	ErrInvalidSignature = errors.New("invalid signature")

	addressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
)

// IsValidAddress reports whether addr looks like an EVM address.
func IsValidAddress(addr string) bool {
	return addressRegex.MatchString(addr)
}

// HashMessage creates an Ethereum signed message hash, prefixing the message
// with "\x19Ethereum Signed Message:\n{len}" per EIP-191.
func HashMessage(message string) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256([]byte(prefix + message))
}

// RecoverAddress recovers the signer's address from a message and a
// hex-encoded 65-byte (r[32] + s[32] + v[1]) signature.
func RecoverAddress(message string, signatureHex string) (string, error) {
	sigHex := strings.TrimPrefix(signatureHex, "0x")

	signature, err := hex.DecodeString(sigHex)
	if err != nil {
		return "", fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(signature) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(signature))
	}

	// Wallets produce v = 27 or 28; Ecrecover expects 0 or 1.
	if signature[64] >= 27 {
		signature[64] -= 27
	}

	pubKeyBytes, err := crypto.Ecrecover(HashMessage(message), signature)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}

	pubKey, err := crypto.UnmarshalPubkey(pubKeyBytes)
	if err != nil {
		return "", fmt.Errorf("failed to unmarshal public key: %w", err)
	}

	return strings.ToLower(crypto.PubkeyToAddress(*pubKey).Hex()), nil
}

// VerifySignature verifies that signatureHex over message was created by
// expectedAddress.
func VerifySignature(message, signatureHex, expectedAddress string) error {
	recovered, err := RecoverAddress(message, signatureHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !strings.EqualFold(recovered, expectedAddress) {
		return fmt.Errorf("%w: expected %s, recovered %s", ErrInvalidSignature, expectedAddress, recovered)
	}
	return nil
}
