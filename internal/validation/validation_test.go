package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEthAddress(t *testing.T) {
	assert.True(t, IsValidEthAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1"))
	assert.False(t, IsValidEthAddress("742d35cc6634c0532925a3b844bc9e7595f0beb1"))
	assert.False(t, IsValidEthAddress("0x742d35cc"))
	assert.False(t, IsValidEthAddress("0x742d35cc6634c0532925a3b844bc9e7595f0bezz"))
	assert.False(t, IsValidEthAddress(""))
}

func TestIsValidDigest(t *testing.T) {
	assert.True(t, IsValidDigest("a665a45920422f9d417e4867efdc4fb8a04a1f3fff1fa07e998e86f7f7a27ae3"))
	assert.False(t, IsValidDigest("A665A45920422F9D417E4867EFDC4FB8A04A1F3FFF1FA07E998E86F7F7A27AE3"))
	assert.False(t, IsValidDigest("a665a459"))
}

func TestSanitizeAddress(t *testing.T) {
	assert.Equal(t, "0xabcdef0000000000000000000000000000000000",
		SanitizeAddress("  0xABCDEF0000000000000000000000000000000000 "))
	assert.Equal(t, "0xabcdef0000000000000000000000000000000000",
		SanitizeAddress("abcdef0000000000000000000000000000000000"))
}

func TestValidBetNumber(t *testing.T) {
	assert.True(t, ValidBetNumber(0))
	assert.True(t, ValidBetNumber(36))
	assert.False(t, ValidBetNumber(-1))
	assert.False(t, ValidBetNumber(37))
}
