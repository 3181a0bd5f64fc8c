package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/jmoiron/sqlx"
)

type roleRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type permissionRow struct {
	ID           int64  `db:"id"`
	RoleID       int64  `db:"role_id"`
	PermissionID int64  `db:"permission_id"`
	Name         string `db:"name"`
	Description  string `db:"description"`
}

const (
	roleColumns       = `id, name, description, created_at, updated_at`
	permissionColumns = `id, role_id, permission_id, name, description`
)

type rolesRepo struct {
	db      sqlx.ExtContext
	dialect *Dialect
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return r.getOne(ctx, `name = ?`, name)
}

func (r *rolesRepo) getOne(ctx context.Context, where string, arg any) (domain.Role, error) {
	var row roleRow
	q := r.db.Rebind(`SELECT ` + roleColumns + ` FROM roles WHERE ` + where)
	if err := sqlx.GetContext(ctx, r.db, &row, q, arg); err != nil {
		return domain.Role{}, mapNotFound(err)
	}

	var perms []permissionRow
	q = r.db.Rebind(`SELECT ` + permissionColumns + ` FROM role_permissions WHERE role_id = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, r.db, &perms, q, row.ID); err != nil {
		return domain.Role{}, err
	}
	return mapRole(row, perms), nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	var rows []roleRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT `+roleColumns+` FROM roles ORDER BY id`); err != nil {
		return nil, err
	}

	var perms []permissionRow
	q := `SELECT ` + permissionColumns + ` FROM role_permissions ORDER BY role_id, id`
	if err := sqlx.SelectContext(ctx, r.db, &perms, q); err != nil {
		return nil, err
	}

	byRole := make(map[int64][]permissionRow, len(rows))
	for _, p := range perms {
		byRole[p.RoleID] = append(byRole[p.RoleID], p)
	}

	roles := make([]domain.Role, len(rows))
	for i, row := range rows {
		roles[i] = mapRole(row, byRole[row.ID])
	}
	return roles, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) (int64, error) {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO roles (name, description, created_at, updated_at)
		VALUES (:name, :description, :created_at, :updated_at)
		RETURNING id`, roleRow{
		Name:        role.Name,
		Description: role.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, r.dialect.mapWriteErr(err)
	}

	if err := r.insertPermissions(ctx, id, role.Permissions); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE roles SET name = ?, description = ?, updated_at = ? WHERE id = ?`),
		role.Name, role.Description, time.Now().UTC(), role.ID,
	)
	if err := expectRows(res, r.dialect.mapWriteErr(err)); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM role_permissions WHERE role_id = ?`), role.ID); err != nil {
		return err
	}
	return r.insertPermissions(ctx, role.ID, role.Permissions)
}

func (r *rolesRepo) insertPermissions(ctx context.Context, roleID int64, perms []domain.RolePermission) error {
	for _, p := range perms {
		_, err := sqlx.NamedExecContext(ctx, r.db, `
			INSERT INTO role_permissions (role_id, permission_id, name, description)
			VALUES (:role_id, :permission_id, :name, :description)`, permissionRow{
			RoleID:       roleID,
			PermissionID: p.PermissionID,
			Name:         p.Name,
			Description:  p.Description,
		})
		if err != nil {
			return r.dialect.mapWriteErr(err)
		}
	}
	return nil
}

func (r *rolesRepo) DeleteRole(ctx context.Context, roleID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM roles WHERE id = ?`), roleID)
	return expectRows(res, err)
}

func (r *rolesRepo) GetPermissionByID(ctx context.Context, id int64) (domain.RolePermission, error) {
	var row permissionRow
	q := r.db.Rebind(`SELECT ` + permissionColumns + ` FROM role_permissions WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return domain.RolePermission{}, mapNotFound(err)
	}
	return mapPermission(row), nil
}

func (r *rolesRepo) UpdatePermission(ctx context.Context, p domain.RolePermission) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE role_permissions SET permission_id = ?, name = ?, description = ? WHERE id = ?`),
		p.PermissionID, p.Name, p.Description, p.ID,
	)
	return expectRows(res, err)
}

func mapRole(row roleRow, perms []permissionRow) domain.Role {
	role := domain.Role{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Permissions: make([]domain.RolePermission, len(perms)),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	for i, p := range perms {
		role.Permissions[i] = mapPermission(p)
	}
	return role
}

func mapPermission(row permissionRow) domain.RolePermission {
	return domain.RolePermission{
		ID:           row.ID,
		RoleID:       row.RoleID,
		PermissionID: row.PermissionID,
		Name:         row.Name,
		Description:  row.Description,
	}
}
