/*
Package usersdk provides a client SDK for the user management service.

# Client vs Session

The package is organized around two types:

  - Client: public endpoints (registration, login, verification codes, health)
  - Session: endpoints that need a bearer token

Create a Client for the public endpoints and to log in:

	client := usersdk.NewClient("https://users.example.com")

	user, err := client.Register(ctx, usersdk.RegisterRequest{
		Username: "alice01",
		Email:    "a@x.com",
		Password: "secret1",
		RoleID:   4,
	})

	session, err := client.Login(ctx, usersdk.LoginRequest{Username: "alice01", Password: "secret1"})

Use the Session for self-service and admin calls:

	history, err := session.LoginHistory(ctx, user.ID, 0, 10)
	loggedOut, err := session.Logout(ctx)

Tokens are not refreshed. Logging out changes the account status but does
not revoke the token.

# Errors

Every non-2xx response is returned as *APIError, built from the response
envelope. Validation failures carry per-field messages in Details:

	_, err := client.Register(ctx, req)
	if usersdk.IsConflict(err) {
		// username or email already taken
	}

# Validation

Request types implement Validate, which the service runs before handling a
request. Callers may run it first to avoid a round trip.
*/
package usersdk
