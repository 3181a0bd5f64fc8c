package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes credentials with bcrypt. Plaintext is first mixed with
// the pepper through HMAC-SHA256 so long passwords are not truncated at
// bcrypt's 72 byte input limit.
type BcryptHasher struct {
	Cost int // bcrypt work factor; zero means bcrypt.DefaultCost
}

// Hash returns a salted bcrypt encoding of plaintext.
func (h BcryptHasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("cryptox: bcrypt cost %d out of range", cost)
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Mismatches and malformed
// hashes both report false.
func (h BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(plaintext)) == nil
}

func prehash(plaintext string) []byte {
	mac := hmac.New(sha256.New, []byte(GetPepper()))
	mac.Write([]byte(plaintext))
	return []byte(base64.RawStdEncoding.EncodeToString(mac.Sum(nil)))
}

// GeneratePassword returns a random 12 character alphanumeric password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 12
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
