package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "test-pepper")
	SetPepperPath(pepperPath)

	// Clean up pepper file before and after tests
	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

var fastHasher = BcryptHasher{Cost: bcrypt.MinCost}

func TestBcryptHasher_Hash(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := fastHasher.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$2a$"), "hash should be bcrypt encoded")
			require.NotContains(t, hash, tt.password+"$")

			require.True(t, fastHasher.Verify(tt.password, hash))
		})
	}
}

func TestBcryptHasher_UniqueSalts(t *testing.T) {
	password := "samepassword"

	hash1, err := fastHasher.Hash(password)
	require.NoError(t, err)
	hash2, err := fastHasher.Hash(password)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.True(t, fastHasher.Verify(password, hash1))
	require.True(t, fastHasher.Verify(password, hash2))
}

func TestBcryptHasher_WrongPassword(t *testing.T) {
	hash, err := fastHasher.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		"correct-passwor",
		strings.Repeat("x", 10000),
	} {
		require.False(t, fastHasher.Verify(wrong, hash), "%q must not verify", wrong)
	}
}

func TestBcryptHasher_LongPasswordsAreNotTruncated(t *testing.T) {
	base := strings.Repeat("a", 80)
	hash, err := fastHasher.Hash(base + "1")
	require.NoError(t, err)

	require.True(t, fastHasher.Verify(base+"1", hash))
	require.False(t, fastHasher.Verify(base+"2", hash))
}

func TestBcryptHasher_MalformedHashFailsClosed(t *testing.T) {
	for _, hash := range []string{
		"",
		"not-a-hash",
		"$2a$04$short",
		"$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	} {
		require.False(t, fastHasher.Verify("password", hash))
	}
}

func TestBcryptHasher_CostRange(t *testing.T) {
	_, err := BcryptHasher{Cost: bcrypt.MaxCost + 1}.Hash("password")
	require.Error(t, err)

	hash, err := fastHasher.Hash("password")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
}

func TestGeneratePassword(t *testing.T) {
	for range 10 {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Equal(t, 12, len(password), "password should be 12 characters")

		for _, char := range password {
			valid := (char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9')
			require.True(t, valid, "password should only contain alphanumeric characters")
		}
	}
}

func TestGeneratePassword_Uniqueness(t *testing.T) {
	const count = 100
	passwords := make(map[string]bool, count)

	for range count {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.NotContains(t, passwords, password, "duplicate password generated")
		passwords[password] = true
	}
}
