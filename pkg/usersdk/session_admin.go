package usersdk

import (
	"context"
	"net/http"
	"strconv"
)

// ListRoles retrieves all roles with their permissions.
func (s *Session) ListRoles(ctx context.Context) ([]RoleInfo, error) {
	var out []RoleInfo
	if err := s.call(ctx, http.MethodGet, "/roles", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRole retrieves one role.
func (s *Session) GetRole(ctx context.Context, roleID int64) (*RoleInfo, error) {
	var out RoleInfo
	if err := s.call(ctx, http.MethodGet, "/roles/"+strconv.FormatInt(roleID, 10), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRole creates a role. Requires an admin session.
func (s *Session) CreateRole(ctx context.Context, req RoleRequest) (*RoleInfo, error) {
	var out RoleInfo
	if err := s.call(ctx, http.MethodPost, "/roles", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRole replaces a role and its permission list. Requires an admin session.
func (s *Session) UpdateRole(ctx context.Context, roleID int64, req RoleRequest) (*RoleInfo, error) {
	var out RoleInfo
	if err := s.call(ctx, http.MethodPut, "/roles/"+strconv.FormatInt(roleID, 10), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRole deletes a role no account is assigned to. Requires an admin session.
func (s *Session) DeleteRole(ctx context.Context, roleID int64) error {
	return s.call(ctx, http.MethodDelete, "/roles/"+strconv.FormatInt(roleID, 10), nil, nil, http.StatusOK)
}

// UpdatePermission renames one permission. Requires an admin session.
func (s *Session) UpdatePermission(ctx context.Context, id int64, req PermissionRequest) (*PermissionInfo, error) {
	var out PermissionInfo
	if err := s.call(ctx, http.MethodPut, "/permissions/"+strconv.FormatInt(id, 10), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAccountStatuses retrieves every account status.
func (s *Session) ListAccountStatuses(ctx context.Context) ([]AccountStatusInfo, error) {
	var out []AccountStatusInfo
	if err := s.call(ctx, http.MethodGet, "/account-status", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccountStatus adds a status. Requires an admin session.
func (s *Session) CreateAccountStatus(ctx context.Context, req AccountStatusRequest) (*AccountStatusInfo, error) {
	var out AccountStatusInfo
	if err := s.call(ctx, http.MethodPost, "/account-status", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccountStatus deletes a status no account is in. Requires an admin session.
func (s *Session) DeleteAccountStatus(ctx context.Context, id int64) error {
	return s.call(ctx, http.MethodDelete, "/account-status/"+strconv.FormatInt(id, 10), nil, nil, http.StatusOK)
}
