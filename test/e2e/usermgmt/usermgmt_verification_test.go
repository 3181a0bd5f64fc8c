package usermgmt_test

import (
	"testing"

	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
	"github.com/stretchr/testify/require"
)

// TestPasswordReset resets a password with a mailed code.
func TestPasswordReset(t *testing.T) {
	svc := setupContainer(t)
	client := usersdk.NewClient(svc.BaseURL)
	ctx := t.Context()

	registerUser(t, client, "viewer04", "viewer04@example.com", "Viewer123!", roleViewer)

	sent, err := client.SendCode(ctx, "viewer04@example.com")
	require.NoError(t, err)
	require.True(t, sent.Success)

	code := svc.mailedCode(t, "viewer04@example.com")
	require.Len(t, code, 6)

	tok, err := client.ResetPassword(ctx, usersdk.ResetPasswordRequest{
		Email:       "viewer04@example.com",
		Code:        code,
		NewPassword: "NewViewer123!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)

	// Codes are single use
	_, err = client.ValidateCode(ctx, "viewer04@example.com", code)
	require.True(t, usersdk.IsStatus(err, 400), "got %v", err)

	login(t, client, "viewer04", "NewViewer123!")
}

// TestVerifyEmail activates an account from a mailed code.
func TestVerifyEmail(t *testing.T) {
	svc := setupContainer(t)
	client := usersdk.NewClient(svc.BaseURL)
	ctx := t.Context()

	registerUser(t, client, "viewer05", "viewer05@example.com", "Viewer123!", roleViewer)

	_, err := client.SendCode(ctx, "viewer05@example.com")
	require.NoError(t, err)

	code := svc.mailedCode(t, "viewer05@example.com")
	require.NoError(t, client.VerifyEmail(ctx, usersdk.VerifyEmailRequest{Email: "viewer05@example.com", Code: code}))

	err = client.VerifyEmail(ctx, usersdk.VerifyEmailRequest{Email: "viewer05@example.com", Code: code})
	require.True(t, usersdk.IsStatus(err, 400), "got %v", err)
}
