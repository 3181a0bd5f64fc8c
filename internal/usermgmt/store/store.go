package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// ConflictError is the ErrAlreadyExists of a write that broke the unique
// constraint on Column. Column is empty when the driver could not tell.
type ConflictError struct {
	Column string
}

func (e *ConflictError) Error() string {
	if e.Column == "" {
		return ErrAlreadyExists.Error()
	}
	return "store: " + e.Column + " already exists"
}

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyExists }

// ConflictColumn returns the column of the ConflictError in err's chain.
func ConflictColumn(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Column
	}
	return ""
}

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so a transaction scoped Store
// offers exactly the same surface as the root one.
type Store interface {
	Users() Users
	Roles() Roles
	AccountStatuses() AccountStatuses
	LoginHistories() LoginHistories
	VerificationCodes() VerificationCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByIdentifier returns the lowest id user whose username or email
	// equals identifier.
	GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error)

	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user and returns its generated id.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdateUser writes every mutable column of u and bumps updated_at.
	// Returns ErrNotFound when no row was affected.
	UpdateUser(ctx context.Context, u domain.User) error

	// UpdateAccountStatus sets account_status_id and bumps updated_at.
	UpdateAccountStatus(ctx context.Context, userID, statusID int64) error

	// UpdatePasswordHash sets the password_hash (bcrypt) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error

	// UpdateRole sets role_id together with the profile matching the new role.
	UpdateRole(ctx context.Context, userID, roleID int64, profile domain.Profile) error

	// UpdateProfile replaces the role specific profile.
	UpdateProfile(ctx context.Context, userID int64, profile domain.Profile) error

	// DeleteUser cascades to login_histories (per schema).
	DeleteUser(ctx context.Context, userID int64) error

	// ListUsers returns users ordered by id starting at offset.
	ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error)

	// QueryUsers returns up to limit users matching filter ordered by id.
	QueryUsers(ctx context.Context, filter domain.UserFilter, limit int) ([]domain.User, error)

	CountUsers(ctx context.Context) (int64, error)
	CountUsersWithRole(ctx context.Context, roleID int64) (int64, error)
	CountUsersWithStatus(ctx context.Context, statusID int64) (int64, error)
}

type Roles interface {
	// GetRoleByID fetches a role and its permissions.
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)

	// GetRoleByName fetches a role by its name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles with their permissions ordered by id.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts the role and its permissions, returning the role id.
	CreateRole(ctx context.Context, r domain.Role) (int64, error)

	// UpdateRole overwrites name and description and replaces the permissions.
	UpdateRole(ctx context.Context, r domain.Role) error

	// DeleteRole removes a role, cascading to its permissions.
	DeleteRole(ctx context.Context, roleID int64) error

	GetPermissionByID(ctx context.Context, id int64) (domain.RolePermission, error)
	UpdatePermission(ctx context.Context, p domain.RolePermission) error
}

type AccountStatuses interface {
	GetStatusByID(ctx context.Context, id int64) (domain.AccountStatus, error)
	ListAll(ctx context.Context) ([]domain.AccountStatus, error)
	CreateStatus(ctx context.Context, s domain.AccountStatus) (int64, error)
	UpdateStatus(ctx context.Context, s domain.AccountStatus) error
	DeleteStatus(ctx context.Context, id int64) error
}

type LoginHistories interface {
	// CreateLoginHistory appends an entry. Entries are never updated.
	CreateLoginHistory(ctx context.Context, h domain.LoginHistory) (int64, error)

	// CountFailedSince counts unsuccessful attempts by userID at or after since.
	CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error)

	// GetLatest returns the most recent entry for userID.
	GetLatest(ctx context.Context, userID int64) (domain.LoginHistory, error)

	// ListForUser returns entries for userID newest first.
	ListForUser(ctx context.Context, userID int64, skip, limit int) ([]domain.LoginHistory, error)
}

type VerificationCodes interface {
	CreateCode(ctx context.Context, c domain.VerificationCode) (int64, error)

	// GetLatestUnused returns the newest unused code row matching email and code.
	GetLatestUnused(ctx context.Context, email, code string) (domain.VerificationCode, error)

	// MarkUsed flips is_used on an unused code. Returns ErrNotFound when the
	// code was already consumed.
	MarkUsed(ctx context.Context, id int64) error

	// DeleteExpiredBefore removes codes that expired before cutoff and
	// returns how many were removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
