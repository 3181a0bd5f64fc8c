package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, password_hash, recovery_email, phone_number,
	profile_img_path, country, state, zip_code, role_id, account_status_id,
	profile, created_at, updated_at`

type userRow struct {
	ID              int64         `db:"id"`
	Username        string        `db:"username"`
	Email           string        `db:"email"`
	PasswordHash    string        `db:"password_hash"`
	RecoveryEmail   string        `db:"recovery_email"`
	PhoneNumber     string        `db:"phone_number"`
	ProfileImgPath  string        `db:"profile_img_path"`
	Country         string        `db:"country"`
	State           string        `db:"state"`
	ZipCode         string        `db:"zip_code"`
	RoleID          sql.NullInt64 `db:"role_id"`
	AccountStatusID int64         `db:"account_status_id"`
	Profile         string        `db:"profile"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

type usersRepo struct {
	db      sqlx.ExtContext
	dialect *Dialect
}

func (r *usersRepo) getOne(ctx context.Context, where string, args ...any) (domain.User, error) {
	var row userRow
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where + ` ORDER BY id LIMIT 1`)
	if err := sqlx.GetContext(ctx, r.db, &row, q, args...); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	return r.getOne(ctx, `username = ? OR email = ?`, identifier, identifier)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `username = ?`, username)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	row, err := toUserRow(u)
	if err != nil {
		return 0, err
	}

	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO users (
			username, email, password_hash, recovery_email, phone_number,
			profile_img_path, country, state, zip_code, role_id, account_status_id,
			profile, created_at, updated_at
		) VALUES (
			:username, :email, :password_hash, :recovery_email, :phone_number,
			:profile_img_path, :country, :state, :zip_code, :role_id, :account_status_id,
			:profile, :created_at, :updated_at
		) RETURNING id`, row)
	return id, r.dialect.mapWriteErr(err)
}

func (r *usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	u.UpdatedAt = time.Now().UTC()
	row, err := toUserRow(u)
	if err != nil {
		return err
	}

	res, err := sqlx.NamedExecContext(ctx, r.db, `
		UPDATE users SET
			username = :username,
			email = :email,
			password_hash = :password_hash,
			recovery_email = :recovery_email,
			phone_number = :phone_number,
			profile_img_path = :profile_img_path,
			country = :country,
			state = :state,
			zip_code = :zip_code,
			role_id = :role_id,
			profile = :profile,
			updated_at = :updated_at
		WHERE id = :id`, row)
	return expectRows(res, r.dialect.mapWriteErr(err))
}

func (r *usersRepo) UpdateAccountStatus(ctx context.Context, userID, statusID int64) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE users SET account_status_id = ?, updated_at = ? WHERE id = ?`),
		statusID, time.Now().UTC(), userID,
	)
	return expectRows(res, err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`),
		hash, time.Now().UTC(), userID,
	)
	return expectRows(res, err)
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID, roleID int64, profile domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE users SET role_id = ?, profile = ?, updated_at = ? WHERE id = ?`),
		nullID(roleID), string(raw), time.Now().UTC(), userID,
	)
	return expectRows(res, err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID int64, profile domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE users SET profile = ?, updated_at = ? WHERE id = ?`),
		string(raw), time.Now().UTC(), userID,
	)
	return expectRows(res, err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), userID)
	return expectRows(res, err)
}

func (r *usersRepo) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	return r.selectUsers(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
}

var filterColumns = map[domain.UserFilterKey]string{
	domain.FilterUsername:        "username",
	domain.FilterEmail:           "email",
	domain.FilterUserID:          "id",
	domain.FilterRoleID:          "role_id",
	domain.FilterAccountStatusID: "account_status_id",
}

func (r *usersRepo) QueryUsers(ctx context.Context, filter domain.UserFilter, limit int) ([]domain.User, error) {
	column, ok := filterColumns[filter.Key]
	if !ok {
		return nil, fmt.Errorf("sqlstore: unknown user filter %q", filter.Key)
	}

	if filter.Key.IsText() {
		pattern := "%" + escapeLike(strings.ToLower(filter.Text)) + "%"
		return r.selectUsers(ctx,
			`SELECT `+userColumns+` FROM users WHERE LOWER(`+column+`) LIKE ? ESCAPE '\' ORDER BY id LIMIT ?`,
			pattern, limit,
		)
	}
	return r.selectUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ? ORDER BY id LIMIT ?`,
		filter.ID, limit,
	)
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *usersRepo) CountUsersWithRole(ctx context.Context, roleID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role_id = ?`, roleID)
}

func (r *usersRepo) CountUsersWithStatus(ctx context.Context, statusID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE account_status_id = ?`, statusID)
}

func (r *usersRepo) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *usersRepo) selectUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		u, err := mapUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func mapUser(row userRow) (domain.User, error) {
	var profile domain.Profile
	if row.Profile != "" {
		if err := json.Unmarshal([]byte(row.Profile), &profile); err != nil {
			return domain.User{}, fmt.Errorf("sqlstore: decode profile of user %d: %w", row.ID, err)
		}
	}
	if profile.Kind == "" {
		profile.Kind = domain.ProfileNone
	}

	return domain.User{
		ID:              row.ID,
		Username:        row.Username,
		Email:           row.Email,
		PasswordHash:    row.PasswordHash,
		RecoveryEmail:   row.RecoveryEmail,
		PhoneNumber:     row.PhoneNumber,
		ProfileImgPath:  row.ProfileImgPath,
		Country:         row.Country,
		State:           row.State,
		ZipCode:         row.ZipCode,
		RoleID:          row.RoleID.Int64,
		AccountStatusID: row.AccountStatusID,
		Profile:         profile,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}, nil
}

func toUserRow(u domain.User) (userRow, error) {
	raw, err := json.Marshal(u.Profile)
	if err != nil {
		return userRow{}, err
	}
	return userRow{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		RecoveryEmail:   u.RecoveryEmail,
		PhoneNumber:     u.PhoneNumber,
		ProfileImgPath:  u.ProfileImgPath,
		Country:         u.Country,
		State:           u.State,
		ZipCode:         u.ZipCode,
		RoleID:          nullID(u.RoleID),
		AccountStatusID: u.AccountStatusID,
		Profile:         string(raw),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}, nil
}

// nullID stores the zero id as NULL so unassigned roles pass the FK.
func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
