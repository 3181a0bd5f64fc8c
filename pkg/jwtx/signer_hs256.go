package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted, matching the
// SHA-256 block of entropy.
const MinSecretLength = 32

// HS256Signer implements the Signer interface using HMAC-SHA256.
type HS256Signer struct {
	secret []byte
}

func newHS256Signer(secret []byte) (*HS256Signer, error) {
	s := &HS256Signer{secret: append([]byte(nil), secret...)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate does a quick sanity check on the secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinSecretLength {
		return fmt.Errorf("jwtx: HS256 secret must be at least %d bytes, got %d", MinSecretLength, len(s.secret))
	}
	return nil
}
