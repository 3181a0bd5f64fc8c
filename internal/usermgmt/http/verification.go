package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

const msgInvalidCode = "Invalid or expired verification code"

// VerificationHandler serves email codes, email verification and password reset.
type VerificationHandler struct {
	VerificationService *service.VerificationService
	AccountService      *service.AccountService
	DirectoryService    *service.DirectoryService
	TokenService        *service.TokenService
}

// HandleSendCode mails a fresh verification code.
//
//	@Summary		Send verification code
//	@Description	Stores a six digit code valid for 10 minutes and mails it to the address. The address does not need an account.
//	@Tags			Verification
//	@Produce		json
//	@Param			email	path		string	true	"Email address"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.CodeResponse}
//	@Failure		400		{object}	httpx.Envelope	"Invalid email address"
//	@Failure		429		{object}	httpx.Envelope	"Too many requests"
//	@Failure		500		{object}	httpx.Envelope	"Code could not be stored or mailed"
//	@Router			/sendemailcode/{email} [get].
func (h *VerificationHandler) HandleSendCode(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))
	if err := usersdk.ValidateEmail(email); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "email: "+err.Error())
		return
	}

	if !h.VerificationService.SendCode(r.Context(), email) {
		httpx.WriteEnvelope(w, http.StatusInternalServerError, "Failed to send verification code",
			usersdk.CodeResponse{Email: email})
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Verification code sent",
		usersdk.CodeResponse{Email: email, Success: true})
}

// HandleValidateCode consumes a verification code.
//
//	@Summary		Validate verification code
//	@Description	A code is accepted at most once and never after it expires.
//	@Tags			Verification
//	@Produce		json
//	@Param			email	path		string	true	"Email address"
//	@Param			code	path		string	true	"Six digit code"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.CodeResponse}
//	@Failure		400		{object}	httpx.Envelope{data=usersdk.CodeResponse}	"Invalid, used or expired code"
//	@Router			/validateemailcode/{email}/{code} [get].
func (h *VerificationHandler) HandleValidateCode(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))

	ok, err := h.VerificationService.ValidateCode(r.Context(), email, r.PathValue("code"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteEnvelope(w, http.StatusBadRequest, msgInvalidCode, usersdk.CodeResponse{Email: email})
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Verification code is valid",
		usersdk.CodeResponse{Email: email, Success: true})
}

// HandleVerifyEmail consumes a code and activates the account.
//
//	@Summary		Verify email
//	@Description	Consumes the code and moves the account registered with the email to Active. The code is consumed even when no account exists.
//	@Tags			Verification
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.VerifyEmailRequest	true	"Email and code"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.CodeResponse}
//	@Failure		400		{object}	httpx.Envelope	"Validation failed or invalid code"
//	@Failure		404		{object}	httpx.Envelope	"No account with that email"
//	@Router			/verifyemail [post].
func (h *VerificationHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req usersdk.VerifyEmailRequest
	if !decodeValid(w, r, &req) {
		return
	}

	ok, err := h.VerificationService.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidCode)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Email verified",
		usersdk.CodeResponse{Email: req.Email, Success: true})
}

// HandleResetPassword sets a new password after consuming a code.
//
//	@Summary		Reset password
//	@Description	Consumes the verification code for the email, stores the new password and returns a fresh token.
//	@Tags			Verification
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.ResetPasswordRequest	true	"Email, code and new password"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.TokenResponse}
//	@Failure		400		{object}	httpx.Envelope	"Validation failed or invalid code"
//	@Failure		404		{object}	httpx.Envelope	"No account with that email"
//	@Router			/resetpassword [post].
func (h *VerificationHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req usersdk.ResetPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}

	// 1. Prove control of the address
	ok, err := h.VerificationService.ValidateCode(ctx, req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidCode)
		return
	}

	// 2. Store the new password
	reset, err := h.AccountService.ResetPassword(ctx, req.Email, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !reset {
		writeServiceError(w, r, service.ErrAccountNotFound)
		return
	}

	// 3. Issue a token for the account
	user, err := h.DirectoryService.GetUserByEmail(ctx, req.Email)
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

	httpx.WriteEnvelope(w, http.StatusOK, "Password reset", toTokenResponse(tok, user))
}
