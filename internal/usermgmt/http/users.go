package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// UsersHandler serves registration and the admin user directory.
type UsersHandler struct {
	DirectoryService *service.DirectoryService
	Verifier         jwtx.Verifier
}

// callerIsAdmin checks an optional bearer token on a public route.
func callerIsAdmin(v jwtx.Verifier, r *http.Request) bool {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	claims, err := v.Verify(strings.TrimSpace(raw))
	return err == nil && claims.Role == adminRole
}

// HandleAdd registers a new account.
//
//	@Summary		Register user
//	@Description	Creates an Active account with the profile shape of its role (1 ContentCreator, 2 ProductionCompany, 3 PlatformAdmin, 4 Viewer). Registering a PlatformAdmin requires an admin token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	httpx.Envelope{data=usersdk.UserInfo}
//	@Failure		400		{object}	httpx.Envelope	"Validation failed or under 18"
//	@Failure		403		{object}	httpx.Envelope	"PlatformAdmin registration without admin token"
//	@Failure		404		{object}	httpx.Envelope	"Role not found"
//	@Failure		409		{object}	httpx.Envelope	"Username or email already exists"
//	@Router			/users [post].
func (h *UsersHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req usersdk.RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if req.RoleID == domain.RolePlatformAdmin && !callerIsAdmin(h.Verifier, r) {
		httpx.WriteError(w, http.StatusForbidden, "Forbidden: registering a platform admin requires an admin token")
		return
	}

	nu := service.NewUser{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.TrimSpace(req.Email),
		Password:       req.Password,
		RecoveryEmail:  req.RecoveryEmail,
		PhoneNumber:    req.PhoneNumber,
		ProfileImgPath: req.ProfileImgPath,
		Country:        req.Country,
		State:          req.State,
		ZipCode:        req.ZipCode,
		RoleID:         req.RoleID,
	}
	if req.Profile != nil {
		nu.Profile = fromSDKProfile(*req.Profile)
	}

	user, err := h.DirectoryService.AddUser(r.Context(), nu)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusCreated, "User registered", toUserInfo(user))
}

// HandleRemove hard deletes an account.
//
//	@Summary		Remove user
//	@Description	Deletes the account and its login history.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		int	true	"User id"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		403	{object}	httpx.Envelope	"Admin token required"
//	@Failure		404	{object}	httpx.Envelope	"Account not found"
//	@Security		BearerAuth
//	@Router			/users/{id} [delete].
func (h *UsersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.DirectoryService.RemoveUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !removed {
		writeServiceError(w, r, service.ErrAccountNotFound)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "User removed", true)
}

// HandleChangeStatus sets any account status.
//
//	@Summary		Change account status
//	@Description	Sets the status without checking transitions.
//	@Tags			Users
//	@Produce		json
//	@Param			id			path		int	true	"User id"
//	@Param			statusId	path		int	true	"Account status id"
//	@Success		200			{object}	httpx.Envelope{data=usersdk.AccountStatusInfo}
//	@Failure		403			{object}	httpx.Envelope	"Admin token required"
//	@Failure		404			{object}	httpx.Envelope	"Account or status not found"
//	@Security		BearerAuth
//	@Router			/users/{id}/status/{statusId} [put].
func (h *UsersHandler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	statusID, ok := pathInt64(w, r, "statusId")
	if !ok {
		return
	}

	status, err := h.DirectoryService.ChangeAccountStatus(r.Context(), id, statusID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Account status changed", toStatusInfo(status))
}

// HandleChangeRole moves an account to another role.
//
//	@Summary		Change role
//	@Description	Keeps the identity fields and replaces the profile with an empty one of the new role's shape.
//	@Tags			Users
//	@Produce		json
//	@Param			id		path		int	true	"User id"
//	@Param			roleId	path		int	true	"Role id"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.RoleInfo}
//	@Failure		403		{object}	httpx.Envelope	"Admin token required"
//	@Failure		404		{object}	httpx.Envelope	"Account or role not found"
//	@Security		BearerAuth
//	@Router			/users/{id}/role/{roleId} [put].
func (h *UsersHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := pathInt64(w, r, "roleId")
	if !ok {
		return
	}

	role, err := h.DirectoryService.ChangeRole(r.Context(), id, roleID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Role changed", toRoleInfo(role))
}

// HandleList pages through accounts by id.
//
//	@Summary		List users
//	@Description	Returns up to limit accounts after skipping cursor rows. nextCursor is 0 once the listing is exhausted.
//	@Tags			Users
//	@Produce		json
//	@Param			limit	path		int	true	"Page size (0 for default, max 100)"
//	@Param			cursor	path		int	true	"Rows to skip"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.UserPage}
//	@Failure		400		{object}	httpx.Envelope	"Invalid limit or cursor"
//	@Failure		403		{object}	httpx.Envelope	"Admin token required"
//	@Security		BearerAuth
//	@Router			/users/{limit}/{cursor} [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, ok := pathInt(w, r, "limit")
	if !ok {
		return
	}
	cursor, ok := pathInt(w, r, "cursor")
	if !ok {
		return
	}

	page, err := h.DirectoryService.ListUsers(r.Context(), limit, cursor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Users retrieved", usersdk.UserPage{
		Users:      toUserInfos(page.Users),
		Cursor:     page.Cursor,
		NextCursor: page.NextCursor,
	})
}

// HandleQuery filters accounts by one property.
//
//	@Summary		Query users by property
//	@Description	property is one of username, email, userid, roleid, accountstatusid. Text properties match by case-insensitive substring, the others by equality.
//	@Tags			Users
//	@Produce		json
//	@Param			property	query		string	true	"Property name"
//	@Param			value		query		string	true	"Value to match"
//	@Param			limit		query		int		false	"Maximum rows (default 10, max 100)"
//	@Success		200			{object}	httpx.Envelope{data=[]usersdk.UserInfo}
//	@Failure		400			{object}	httpx.Envelope	"Unknown property or malformed value"
//	@Failure		403			{object}	httpx.Envelope	"Admin token required"
//	@Security		BearerAuth
//	@Router			/users/by-property [get].
func (h *UsersHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	users, err := h.DirectoryService.QueryUsers(r.Context(), q.Get("property"), q.Get("value"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Users retrieved", toUserInfos(users))
}

// HandleCount returns the number of accounts.
//
//	@Summary		Count users
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope{data=usersdk.CountResponse}
//	@Failure		403	{object}	httpx.Envelope	"Admin token required"
//	@Security		BearerAuth
//	@Router			/users/count [get].
func (h *UsersHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.DirectoryService.CountUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Users counted", usersdk.CountResponse{Total: n})
}
