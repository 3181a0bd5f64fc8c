package http

import (
	"net/http"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// StatusesHandler serves account status reference data.
type StatusesHandler struct {
	StatusService *service.AccountStatusService
}

// HandleList lists account statuses.
//
//	@Summary		List account statuses
//	@Tags			Account Status
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope{data=[]usersdk.AccountStatusInfo}
//	@Security		BearerAuth
//	@Router			/account-status [get].
func (h *StatusesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.StatusService.ListStatuses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]usersdk.AccountStatusInfo, len(statuses))
	for i, s := range statuses {
		out[i] = toStatusInfo(s)
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Account statuses retrieved", out)
}

// HandleGet fetches one account status.
//
//	@Summary		Get account status
//	@Tags			Account Status
//	@Produce		json
//	@Param			id	path		int	true	"Account status id"
//	@Success		200	{object}	httpx.Envelope{data=usersdk.AccountStatusInfo}
//	@Failure		404	{object}	httpx.Envelope	"Status not found"
//	@Security		BearerAuth
//	@Router			/account-status/{id} [get].
func (h *StatusesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	st, err := h.StatusService.GetStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Account status retrieved", toStatusInfo(st))
}

// HandleCreate adds an account status.
//
//	@Summary		Create account status
//	@Tags			Account Status
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.AccountStatusRequest	true	"Status"
//	@Success		201		{object}	httpx.Envelope{data=usersdk.AccountStatusInfo}
//	@Failure		400		{object}	httpx.Envelope	"Validation failed"
//	@Failure		403		{object}	httpx.Envelope	"Admin token required"
//	@Failure		409		{object}	httpx.Envelope	"Status name already exists"
//	@Security		BearerAuth
//	@Router			/account-status [post].
func (h *StatusesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req usersdk.AccountStatusRequest
	if !decodeValid(w, r, &req) {
		return
	}

	st, err := h.StatusService.CreateStatus(r.Context(), domain.AccountStatus{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusCreated, "Account status created", toStatusInfo(st))
}

// HandleUpdate renames an account status.
//
//	@Summary		Update account status
//	@Tags			Account Status
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Account status id"
//	@Param			request	body		usersdk.AccountStatusRequest	true	"Status"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.AccountStatusInfo}
//	@Failure		400		{object}	httpx.Envelope	"Validation failed"
//	@Failure		403		{object}	httpx.Envelope	"Admin token required"
//	@Failure		404		{object}	httpx.Envelope	"Status not found"
//	@Security		BearerAuth
//	@Router			/account-status/{id} [put].
func (h *StatusesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req usersdk.AccountStatusRequest
	if !decodeValid(w, r, &req) {
		return
	}

	st, err := h.StatusService.UpdateStatus(r.Context(), domain.AccountStatus{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Account status updated", toStatusInfo(st))
}

// HandleDelete deletes an account status no account is in.
//
//	@Summary		Delete account status
//	@Tags			Account Status
//	@Produce		json
//	@Param			id	path		int	true	"Account status id"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		403	{object}	httpx.Envelope	"Admin token required"
//	@Failure		404	{object}	httpx.Envelope	"Status not found"
//	@Failure		409	{object}	httpx.Envelope	"Status still in use"
//	@Security		BearerAuth
//	@Router			/account-status/{id} [delete].
func (h *StatusesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	if err := h.StatusService.DeleteStatus(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Account status deleted", true)
}
