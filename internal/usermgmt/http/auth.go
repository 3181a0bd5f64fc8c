package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

// HandleLogin authenticates a user and issues an access token.
//
//	@Summary		Log in
//	@Description	Authenticates with a username or email and a password. Every attempt is recorded in the login history; a successful one moves the account to Active.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.TokenResponse}
//	@Failure		400		{object}	httpx.Envelope	"Invalid request body or validation failed"
//	@Failure		401		{object}	httpx.Envelope	"Wrong credentials"
//	@Failure		403		{object}	httpx.Envelope	"Account is unregistered, deactivated or banned"
//	@Failure		404		{object}	httpx.Envelope	"Account not found"
//	@Failure		429		{object}	httpx.Envelope	"Too many requests"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req usersdk.LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	user, err := h.AccountService.Login(ctx, strings.TrimSpace(req.Username), req.Password, domain.LoginContext{
		IPAddress: httpx.IPKeyExtractor(r),
		Device:    r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	tok, err := h.TokenService.GenerateToken(user)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign token", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Login successful", toTokenResponse(tok, user))
}

// HandleLogout moves the caller's account to LoggedOut.
//
//	@Summary		Log out
//	@Description	Moves the account named by the token to LoggedOut. Logging out twice is not an error; loggedOut is false the second time. The token itself stays valid until it expires.
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope{data=usersdk.LogoutResponse}
//	@Failure		401	{object}	httpx.Envelope	"Missing or invalid token"
//	@Failure		404	{object}	httpx.Envelope	"Account not found"
//	@Security		BearerAuth
//	@Router			/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	changed, err := h.AccountService.Logout(ctx, httpx.EmailFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := "Logged out successfully"
	if !changed {
		msg = "Already logged out"
	}
	httpx.WriteEnvelope(w, http.StatusOK, msg, usersdk.LogoutResponse{LoggedOut: changed})
}
