package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
	// TokenSize512 provides 512 bits of entropy (86 chars base64url).
	TokenSize512 = 64
)

// GenerateToken creates a cryptographically secure random token of the specified byte length.
// The token is returned as a base64url-encoded string (URL-safe, no padding).
// Returns an error if the random number generator fails.
//
// Common sizes:
//   - TokenSize128 (16 bytes): Short-lived tokens, CSRF tokens
//   - TokenSize256 (32 bytes): signing secrets, API keys (recommended)
//   - TokenSize512 (64 bytes): High-security tokens
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateNumericCode returns a uniformly random decimal code of exactly
// digits digits without a leading zero, e.g. 100000..999999 for 6.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", fmt.Errorf("code length must be between 1 and 18, got %d", digits)
	}

	low := int64(1)
	for range digits - 1 {
		low *= 10
	}

	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+low, 10), nil
}
