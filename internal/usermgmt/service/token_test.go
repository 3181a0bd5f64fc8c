package service

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	secret := []byte(strings.Repeat("t", jwtx.MinSecretLength))
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	svc := &TokenService{
		Signer: signer,
		Issuer: "usermgmt",
		Clock:  func() time.Time { return now },
	}

	tok, err := svc.GenerateToken(domain.User{ID: 12, Email: "a@x.com", RoleID: domain.RolePlatformAdmin})
	require.NoError(t, err)
	require.Equal(t, "Bearer", tok.TokenType)
	require.True(t, tok.ExpiresAt.Equal(now.Add(1500*time.Minute)))

	claims, err := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{Issuer: "usermgmt"}).Verify(tok.Token)
	require.NoError(t, err)
	require.Equal(t, "12", claims.Subject)
	require.Equal(t, "a@x.com", claims.Name)
	require.Equal(t, "3", claims.Role)
	require.True(t, claims.ExpiresAt.Time.Equal(now.Add(1500*time.Minute)))
}
