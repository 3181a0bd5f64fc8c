package http

import (
	"net/http"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// ProfileHandler serves one profile kind; the router mounts one per kind.
type ProfileHandler struct {
	ProfileService *service.ProfileService
	Kind           domain.ProfileKind
}

// HandleGet returns an account whose profile is of the handler's kind.
//
//	@Summary		Get profile
//	@Description	Mounted at /content-creators, /production-companies, /platform-admins and /viewers. Accounts whose profile is of another kind are not found.
//	@Tags			Profiles
//	@Produce		json
//	@Param			userId	path		int	true	"User id"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.UserInfo}
//	@Failure		403		{object}	httpx.Envelope	"Not the caller's account and not an admin"
//	@Failure		404		{object}	httpx.Envelope	"Profile not found"
//	@Security		BearerAuth
//	@Router			/viewers/{userId} [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userId")
	if !ok {
		return
	}

	user, err := h.ProfileService.GetProfile(r.Context(), userID, h.Kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Profile retrieved", toUserInfo(user))
}

// HandleUpdate replaces the profile payload of the handler's kind.
//
//	@Summary		Update profile
//	@Description	The payload matching the endpoint's kind replaces the stored one. Dates of birth must make the person at least 18.
//	@Tags			Profiles
//	@Accept			json
//	@Produce		json
//	@Param			userId	path		int				true	"User id"
//	@Param			request	body		usersdk.Profile	true	"Profile payload"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.UserInfo}
//	@Failure		400		{object}	httpx.Envelope	"Invalid body or under 18"
//	@Failure		403		{object}	httpx.Envelope	"Not the caller's account and not an admin"
//	@Failure		404		{object}	httpx.Envelope	"Profile not found"
//	@Security		BearerAuth
//	@Router			/viewers/{userId} [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "userId")
	if !ok {
		return
	}

	var req usersdk.Profile
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	p := fromSDKProfile(req)
	p.Kind = h.Kind

	user, err := h.ProfileService.UpdateProfile(r.Context(), userID, p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Profile updated", toUserInfo(user))
}
