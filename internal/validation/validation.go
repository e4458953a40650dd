// Package validation provides request hygiene helpers for the betting API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size accepted by the API.
const MaxRequestSize = 1 << 20 // 1MB

var (
	ethAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	digestRegex     = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// RequestSizeMiddleware caps request body size so oversized payloads fail
// at the JSON decoder instead of being buffered whole.
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidEthAddress checks for a 0x-prefixed 40-hex-char address.
func IsValidEthAddress(addr string) bool {
	return ethAddressRegex.MatchString(addr)
}

// IsValidDigest checks for a lowercase 64-hex-char SHA-256 digest.
func IsValidDigest(s string) bool {
	return digestRegex.MatchString(s)
}

// SanitizeAddress normalizes an Ethereum address to lowercase 0x form.
func SanitizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !strings.HasPrefix(addr, "0x") && len(addr) == 40 {
		addr = "0x" + addr
	}
	return addr
}

// ValidBetNumber reports whether n is on the European wheel.
func ValidBetNumber(n int) bool {
	return n >= 0 && n <= 36
}
