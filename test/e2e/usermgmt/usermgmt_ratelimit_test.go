package usermgmt_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies /login allows five attempts a minute
// per address and identifier.
func TestRateLimitLoginEndpoint(t *testing.T) {
	svc := setupContainerWithDefaultRateLimits(t)
	client := usersdk.NewClient(svc.BaseURL)
	ctx := t.Context()

	for i := range 5 {
		_, err := client.Login(ctx, usersdk.LoginRequest{Username: "nobody", Password: "wrong-password"})
		require.Error(t, err)
		require.False(t, usersdk.IsStatus(err, http.StatusTooManyRequests), "Should not be rate limited yet (request %d)", i+1)
	}

	_, err := client.Login(ctx, usersdk.LoginRequest{Username: "nobody", Password: "wrong-password"})
	require.True(t, usersdk.IsStatus(err, http.StatusTooManyRequests), "Should be rate limited after 5 requests, got %v", err)

	_, err = client.Login(ctx, usersdk.LoginRequest{Username: "NOBODY", Password: "wrong-password"})
	require.True(t, usersdk.IsStatus(err, http.StatusTooManyRequests), "Identifier case should not reset the budget, got %v", err)

	_, err = client.Login(ctx, usersdk.LoginRequest{Username: "somebody", Password: "wrong-password"})
	require.Error(t, err)
	require.False(t, usersdk.IsStatus(err, http.StatusTooManyRequests), "Another identifier has its own budget")
}

// TestRateLimitSendCodePerAddress verifies code mails are limited per address.
func TestRateLimitSendCodePerAddress(t *testing.T) {
	svc := setupContainerWithDefaultRateLimits(t)
	client := usersdk.NewClient(svc.BaseURL)
	ctx := t.Context()

	for range 5 {
		_, err := client.SendCode(ctx, "limited@example.com")
		require.NoError(t, err)
	}

	_, err := client.SendCode(ctx, "limited@example.com")
	require.True(t, usersdk.IsStatus(err, http.StatusTooManyRequests), "got %v", err)

	_, err = client.SendCode(ctx, "other@example.com")
	require.NoError(t, err, "Another address has its own budget")
}
