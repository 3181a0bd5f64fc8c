package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
)

var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleAlreadyExists  = errors.New("role already exists")
	ErrRoleInUse          = errors.New("role is still assigned to users")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrInvalidRole        = errors.New("role name is required")
)

// RolesService manages roles and their permission lists.
type RolesService struct {
	Store store.Store
}

// ListRoles returns every role with its permissions.
func (s *RolesService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}

// GetRole fetches a role by id.
func (s *RolesService) GetRole(ctx context.Context, roleID int64) (domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrRoleNotFound
	}
	return role, err
}

// CreateRole inserts a role together with its permissions.
func (s *RolesService) CreateRole(ctx context.Context, role domain.Role) (domain.Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return domain.Role{}, ErrInvalidRole
	}

	var id int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		id, err = tx.Roles().CreateRole(ctx, role)
		return err
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Role{}, ErrRoleAlreadyExists
	}
	if err != nil {
		return domain.Role{}, err
	}
	return s.Store.Roles().GetRoleByID(ctx, id)
}

// UpdateRole overwrites a role's name and description and replaces its
// permissions.
func (s *RolesService) UpdateRole(ctx context.Context, role domain.Role) (domain.Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return domain.Role{}, ErrInvalidRole
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Roles().UpdateRole(ctx, role)
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Role{}, ErrRoleNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Role{}, ErrRoleAlreadyExists
	case err != nil:
		return domain.Role{}, err
	}
	return s.Store.Roles().GetRoleByID(ctx, role.ID)
}

// DeleteRole removes a role no user holds. Its permissions go with it.
func (s *RolesService) DeleteRole(ctx context.Context, roleID int64) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Users().CountUsersWithRole(ctx, roleID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrRoleInUse
		}

		err = tx.Roles().DeleteRole(ctx, roleID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	})
}

// UpdatePermission changes the name and description of one permission.
func (s *RolesService) UpdatePermission(ctx context.Context, p domain.RolePermission) (domain.RolePermission, error) {
	current, err := s.Store.Roles().GetPermissionByID(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.RolePermission{}, ErrPermissionNotFound
	}
	if err != nil {
		return domain.RolePermission{}, err
	}

	current.Name = p.Name
	current.Description = p.Description
	if p.PermissionID != 0 {
		current.PermissionID = p.PermissionID
	}
	if err := s.Store.Roles().UpdatePermission(ctx, current); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RolePermission{}, ErrPermissionNotFound
		}
		return domain.RolePermission{}, err
	}
	return current, nil
}
