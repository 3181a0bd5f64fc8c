package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "usermgmt",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("usermgmt"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("other-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("no exp or nbf", func(t *testing.T) {
		claims := &jwtx.Claims{}
		require.NoError(t, claims.ValidateExpiry())
	})
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid with leeway", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			},
		}
		require.NoError(t, claims.ValidateExpiryWithLeeway(30*time.Second))
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-2 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiryWithLeeway(30*time.Second), jwtx.ErrExpired)
	})
}

func TestNewUserClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := jwtx.NewUserClaims("42", "alice@example.com", "4", jwtx.DefaultTokenTTL, "usermgmt", now)

	require.Equal(t, "42", c.Subject)
	require.Equal(t, "alice@example.com", c.Name)
	require.Equal(t, "4", c.Role)
	require.Equal(t, now.Add(1500*time.Minute), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
}
