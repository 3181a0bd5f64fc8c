package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// BootstrapHandler serves POST /bootstrap.
type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP creates the first platform admin.
//
//	@Summary		Bootstrap the service
//	@Description	Creates the first Active platform admin. Only available when a bootstrap token is configured, and only until a platform admin exists. An empty adminPassword is generated and returned once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		usersdk.BootstrapRequest	true	"Admin account"
//	@Success		201					{object}	httpx.Envelope{data=usersdk.BootstrapResponse}
//	@Failure		400					{object}	httpx.Envelope	"Invalid request body or validation failed"
//	@Failure		401					{object}	httpx.Envelope	"Missing or invalid bootstrap token"
//	@Failure		404					{object}	httpx.Envelope	"Bootstrap not enabled"
//	@Failure		409					{object}	httpx.Envelope	"A platform admin already exists"
//	@Failure		500					{object}	httpx.Envelope	"Failed to create admin user"
//	@Router			/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("Starting to bootstrap")

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		httpx.WriteError(w, http.StatusNotFound, "Bootstrap endpoint is not enabled")
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	// 3. Parse request body and validate
	var req usersdk.BootstrapRequest
	if !decodeValid(w, r, &req) {
		return
	}

	// 4. Perform bootstrap
	result, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		AdminUsername: strings.TrimSpace(req.AdminUsername),
		AdminEmail:    strings.TrimSpace(req.AdminEmail),
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteError(w, http.StatusConflict, "System has already been bootstrapped")
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid bootstrap token")
		default:
			writeServiceError(w, r, err)
		}
		return
	}

	l.Info("bootstrap complete")
	httpx.WriteEnvelope(w, http.StatusCreated, "Platform admin created", usersdk.BootstrapResponse{
		Admin:             toUserInfo(result.Admin),
		GeneratedPassword: result.GeneratedPassword,
	})
}
