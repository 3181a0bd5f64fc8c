package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// AccountHandler serves self-service account updates, deactivation and login history.
type AccountHandler struct {
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

// targetAccount resolves the account a self-service body refers to. Zero
// means the caller; anyone else needs an admin token.
func targetAccount(w http.ResponseWriter, r *http.Request, requested int64) (int64, bool) {
	ctx := r.Context()
	self, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized: token has no numeric subject")
		return 0, false
	}
	if requested == 0 || requested == self {
		return self, true
	}
	if httpx.RoleFromContext(ctx) != adminRole {
		httpx.WriteError(w, http.StatusForbidden, "Forbidden: insufficient role")
		return 0, false
	}
	return requested, true
}

// HandleUpdate applies a partial update to an account.
//
//	@Summary		Update account
//	@Description	Only non-empty fields are applied. Username and email must stay unique. The password is rehashed only when it differs from the current one. A fresh token is returned when callers update their own account.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.UpdateAccountRequest	true	"Fields to change"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.TokenResponse}
//	@Failure		400		{object}	httpx.Envelope	"Invalid request body or validation failed"
//	@Failure		401		{object}	httpx.Envelope	"Missing or invalid token"
//	@Failure		403		{object}	httpx.Envelope	"Updating another account requires an admin token"
//	@Failure		404		{object}	httpx.Envelope	"Account not found"
//	@Failure		409		{object}	httpx.Envelope	"Username or email already exists"
//	@Security		BearerAuth
//	@Router			/users/update [put].
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req usersdk.UpdateAccountRequest
	if !decodeValid(w, r, &req) {
		return
	}
	target, ok := targetAccount(w, r, req.UserID)
	if !ok {
		return
	}

	user, err := h.AccountService.UpdateAccount(ctx, target, service.AccountUpdate{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		RecoveryEmail:  req.RecoveryEmail,
		PhoneNumber:    req.PhoneNumber,
		ProfileImgPath: req.ProfileImgPath,
		Country:        req.Country,
		State:          req.State,
		ZipCode:        req.ZipCode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var tok domain.AccessToken
	if self, _ := httpx.UserIDFromContext(ctx); self == target {
		tok, err = h.TokenService.GenerateToken(user)
		if err != nil {
			slogx.FromContext(ctx).Error("failed to sign token", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Account updated", toTokenResponse(tok, user))
}

// HandleDeactivate moves an account to Deactivated.
//
//	@Summary		Deactivate account
//	@Description	Deactivates the caller's account, or the account named by userId when called with an admin token.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.DeactivateRequest	false	"Account to deactivate"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope	"Missing or invalid token"
//	@Failure		403		{object}	httpx.Envelope	"Deactivating another account requires an admin token"
//	@Failure		404		{object}	httpx.Envelope	"Account not found"
//	@Failure		500		{object}	httpx.Envelope	"Deactivated status missing from reference data"
//	@Security		BearerAuth
//	@Router			/deactivate-account [put].
func (h *AccountHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	var req usersdk.DeactivateRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	target, ok := targetAccount(w, r, req.UserID)
	if !ok {
		return
	}

	if err := h.AccountService.DeactivateAccount(r.Context(), target); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Account deactivated", true)
}

// HandleLoginStatus returns the latest login attempt of an account.
//
//	@Summary		Login status
//	@Tags			Account
//	@Produce		json
//	@Param			userId	path		int	true	"User id"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.LoginHistoryInfo}
//	@Failure		403		{object}	httpx.Envelope	"Not the caller's account and not an admin"
//	@Failure		404		{object}	httpx.Envelope	"Account not found or no login recorded"
//	@Security		BearerAuth
//	@Router			/login-status/{userId} [get].
func (h *AccountHandler) HandleLoginStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userId")
	if !ok {
		return
	}

	entry, err := h.AccountService.GetLoginStatus(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Login status retrieved", toHistoryInfo(entry))
}

// HandleLoginHistory pages through the login attempts of an account.
//
//	@Summary		Login history
//	@Description	Returns login attempts newest first. Limit is capped at 100.
//	@Tags			Account
//	@Produce		json
//	@Param			userId	path		int	true	"User id"
//	@Param			skip	path		int	true	"Rows to skip"
//	@Param			limit	path		int	true	"Rows to return"
//	@Success		200		{object}	httpx.Envelope{data=[]usersdk.LoginHistoryInfo}
//	@Failure		400		{object}	httpx.Envelope	"Negative skip or non-positive limit"
//	@Failure		403		{object}	httpx.Envelope	"Not the caller's account and not an admin"
//	@Failure		404		{object}	httpx.Envelope	"Account not found"
//	@Security		BearerAuth
//	@Router			/loginhistory/{userId}/{skip}/{limit} [get].
func (h *AccountHandler) HandleLoginHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userId")
	if !ok {
		return
	}
	skip, ok := pathInt(w, r, "skip")
	if !ok {
		return
	}
	limit, ok := pathInt(w, r, "limit")
	if !ok {
		return
	}

	rows, err := h.AccountService.GetLoginHistory(r.Context(), userID, skip, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]usersdk.LoginHistoryInfo, len(rows))
	for i, row := range rows {
		out[i] = toHistoryInfo(row)
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Login history retrieved", out)
}
