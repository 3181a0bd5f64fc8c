package http

import (
	"net/http"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

// RolesHandler serves role and permission management.
type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleList lists roles.
//
//	@Summary		List all roles
//	@Description	Returns every role with its ordered permission list.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope{data=[]usersdk.RoleInfo}
//	@Failure		401	{object}	httpx.Envelope	"Missing or invalid token"
//	@Security		BearerAuth
//	@Router			/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListRoles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]usersdk.RoleInfo, len(roles))
	for i, role := range roles {
		out[i] = toRoleInfo(role)
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Roles retrieved", out)
}

// HandleGet fetches one role.
//
//	@Summary		Get role
//	@Tags			Roles
//	@Produce		json
//	@Param			roleId	path		int	true	"Role id"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.RoleInfo}
//	@Failure		404		{object}	httpx.Envelope	"Role not found"
//	@Security		BearerAuth
//	@Router			/roles/{roleId} [get].
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "roleId")
	if !ok {
		return
	}

	role, err := h.RolesService.GetRole(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Role retrieved", toRoleInfo(role))
}

// HandleCreate creates a role.
//
//	@Summary		Create role
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usersdk.RoleRequest	true	"Role with permissions"
//	@Success		201		{object}	httpx.Envelope{data=usersdk.RoleInfo}
//	@Failure		400		{object}	httpx.Envelope	"Validation failed"
//	@Failure		403		{object}	httpx.Envelope	"Admin token required"
//	@Failure		409		{object}	httpx.Envelope	"Role name already exists"
//	@Security		BearerAuth
//	@Router			/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req usersdk.RoleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	role, err := h.RolesService.CreateRole(r.Context(), fromRoleRequest(0, req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusCreated, "Role created", toRoleInfo(role))
}

// HandleUpdate replaces a role and its permissions.
//
//	@Summary		Update role
//	@Description	Overwrites name and description and replaces the whole permission list.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			roleId	path		int					true	"Role id"
//	@Param			request	body		usersdk.RoleRequest	true	"Role with permissions"
//	@Success		200		{object}	httpx.Envelope{data=usersdk.RoleInfo}
//	@Failure		400		{object}	httpx.Envelope	"Validation failed"
//	@Failure		403		{object}	httpx.Envelope	"Admin token required"
//	@Failure		404		{object}	httpx.Envelope	"Role not found"
//	@Failure		409		{object}	httpx.Envelope	"Role name already exists"
//	@Security		BearerAuth
//	@Router			/roles/{roleId} [put].
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "roleId")
	if !ok {
		return
	}
	var req usersdk.RoleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	role, err := h.RolesService.UpdateRole(r.Context(), fromRoleRequest(id, req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Role updated", toRoleInfo(role))
}

// HandleDelete deletes a role.
//
//	@Summary		Delete role
//	@Description	Fails while any account holds the role. Permissions are deleted with it.
//	@Tags			Roles
//	@Produce		json
//	@Param			roleId	path		int	true	"Role id"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		403		{object}	httpx.Envelope	"Admin token required"
//	@Failure		404		{object}	httpx.Envelope	"Role not found"
//	@Failure		409		{object}	httpx.Envelope	"Role still assigned to users"
//	@Security		BearerAuth
//	@Router			/roles/{roleId} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "roleId")
	if !ok {
		return
	}

	if err := h.RolesService.DeleteRole(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Role deleted", true)
}

// HandleUpdatePermission renames one permission.
//
//	@Summary		Update permission
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			permissionId	path		int							true	"Permission row id"
//	@Param			request			body		usersdk.PermissionRequest	true	"New name and description"
//	@Success		200				{object}	httpx.Envelope{data=usersdk.PermissionInfo}
//	@Failure		400				{object}	httpx.Envelope	"Validation failed"
//	@Failure		403				{object}	httpx.Envelope	"Admin token required"
//	@Failure		404				{object}	httpx.Envelope	"Permission not found"
//	@Security		BearerAuth
//	@Router			/permissions/{permissionId} [put].
func (h *RolesHandler) HandleUpdatePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "permissionId")
	if !ok {
		return
	}
	var req usersdk.PermissionRequest
	if !decodeValid(w, r, &req) {
		return
	}

	p, err := h.RolesService.UpdatePermission(r.Context(), domain.RolePermission{
		ID:           id,
		PermissionID: req.PermissionID,
		Name:         req.Name,
		Description:  req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteEnvelope(w, http.StatusOK, "Permission updated", toPermissionInfo(p))
}
