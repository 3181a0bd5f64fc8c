package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

// DefaultPageSize applies when a listing asks for no particular size.
const DefaultPageSize = 10

// DirectoryService covers the administrative side of the lifecycle:
// registration, removal, status and role changes, and listings.
type DirectoryService struct {
	Store    store.Store
	Hasher   Hasher
	Notifier Notifier
	Clock    Clock
}

// NewUser is a registration request. Profile is optional; it is normalized
// to the shape matching RoleID.
type NewUser struct {
	Username       string
	Email          string
	Password       string
	RecoveryEmail  string
	PhoneNumber    string
	ProfileImgPath string
	Country        string
	State          string
	ZipCode        string
	RoleID         int64
	Profile        domain.Profile
}

// UserPage is one page of an id ordered listing. NextCursor is zero when
// the listing is exhausted.
type UserPage struct {
	Users      []domain.User
	Cursor     int
	NextCursor int
}

// AddUser registers a new account in the Active status.
func (s *DirectoryService) AddUser(ctx context.Context, nu NewUser) (domain.User, error) {
	log := slogx.FromContext(ctx)
	users := s.Store.Users()

	// 1. Email first, then username
	if _, err := users.GetUserByEmail(ctx, nu.Email); err == nil {
		return domain.User{}, ErrEmailAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}
	if _, err := users.GetUserByUsername(ctx, nu.Username); err == nil {
		return domain.User{}, ErrUsernameAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	// 2. Role must exist when given
	if nu.RoleID != 0 {
		if _, err := s.Store.Roles().GetRoleByID(ctx, nu.RoleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.User{}, ErrRoleNotFound
			}
			return domain.User{}, err
		}
	}

	now := s.Clock.now()
	profile := nu.Profile.Normalize(nu.RoleID)
	if err := checkAdult(profile.DateOfBirth(), now); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(nu.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Username:        nu.Username,
		Email:           nu.Email,
		PasswordHash:    hash,
		RecoveryEmail:   nu.RecoveryEmail,
		PhoneNumber:     nu.PhoneNumber,
		ProfileImgPath:  nu.ProfileImgPath,
		Country:         nu.Country,
		State:           nu.State,
		ZipCode:         nu.ZipCode,
		RoleID:          nu.RoleID,
		AccountStatusID: domain.StatusActive,
		Profile:         profile,
	}
	id, err := users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost a race with a concurrent registration
		return domain.User{}, userConflict(err)
	}
	if err != nil {
		return domain.User{}, err
	}

	created, err := users.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	log.Info("user registered",
		slog.Int64("user_id", id),
		slog.Int64("role_id", nu.RoleID),
	)
	publish(ctx, s.Notifier, now, domain.EventUserRegistered, created,
		fmt.Sprintf("User %s has been registered.", created.Username))
	return created, nil
}

// RemoveUser hard deletes an account and its login history. It reports
// false when the account does not exist.
func (s *DirectoryService) RemoveUser(ctx context.Context, userID int64) (bool, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventUserRemoved, user,
		fmt.Sprintf("User %s has been removed.", user.Username))
	return true, nil
}

// ChangeAccountStatus sets any existing status on any existing account.
// No transition rules apply.
func (s *DirectoryService) ChangeAccountStatus(ctx context.Context, userID, statusID int64) (domain.AccountStatus, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.AccountStatus{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.AccountStatus{}, err
	}
	status, err := s.Store.AccountStatuses().GetStatusByID(ctx, statusID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.AccountStatus{}, ErrStatusNotFound
	}
	if err != nil {
		return domain.AccountStatus{}, err
	}

	if err := s.Store.Users().UpdateAccountStatus(ctx, userID, statusID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AccountStatus{}, ErrFailToUpdate
		}
		return domain.AccountStatus{}, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventUserStatusChanged, user,
		fmt.Sprintf("User %s account status has been changed to %s.", user.Username, status.Name))
	return status, nil
}

// ChangeRole re-types an account. Identity fields survive; the profile is
// replaced by an empty one of the target role's shape.
func (s *DirectoryService) ChangeRole(ctx context.Context, userID, roleID int64) (domain.Role, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.Role{}, err
	}
	role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrRoleNotFound
	}
	if err != nil {
		return domain.Role{}, err
	}

	if err := s.Store.Users().UpdateRole(ctx, userID, roleID, domain.DefaultProfile(roleID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Role{}, ErrFailToUpdate
		}
		return domain.Role{}, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventUserRoleChanged, user,
		fmt.Sprintf("User %s role has been changed to %d.", user.Username, roleID))
	return role, nil
}

// ListUsers returns up to limit users ordered by id, skipping cursor rows.
// Limit is clamped to [1, MaxPageSize] with DefaultPageSize for zero.
func (s *DirectoryService) ListUsers(ctx context.Context, limit, cursor int) (UserPage, error) {
	if cursor < 0 || limit < 0 {
		return UserPage{}, ErrFailToMeetCriteria
	}
	limit = clampLimit(limit)

	users, err := s.Store.Users().ListUsers(ctx, cursor, limit)
	if err != nil {
		return UserPage{}, err
	}

	page := UserPage{Users: users, Cursor: cursor}
	if len(users) == limit {
		page.NextCursor = cursor + limit
	}
	return page, nil
}

// ParseUserFilter turns a property name and raw value into a typed filter.
// Property names are matched case-insensitively.
func ParseUserFilter(property, value string) (domain.UserFilter, error) {
	key := domain.UserFilterKey(strings.ToLower(strings.TrimSpace(property)))
	if !key.Valid() {
		return domain.UserFilter{}, ErrUnknownFilterKey
	}
	if key.IsText() {
		if value == "" {
			return domain.UserFilter{}, ErrFailToMeetCriteria
		}
		return domain.UserFilter{Key: key, Text: value}, nil
	}

	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return domain.UserFilter{}, ErrFailToMeetCriteria
	}
	return domain.UserFilter{Key: key, ID: id}, nil
}

// QueryUsers returns up to limit users matching property=value. Text
// properties match by case-insensitive substring.
func (s *DirectoryService) QueryUsers(ctx context.Context, property, value string, limit int) ([]domain.User, error) {
	filter, err := ParseUserFilter(property, value)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrFailToMeetCriteria
	}
	return s.Store.Users().QueryUsers(ctx, filter, clampLimit(limit))
}

// CountUsers returns the number of registered accounts.
func (s *DirectoryService) CountUsers(ctx context.Context) (int64, error) {
	return s.Store.Users().CountUsers(ctx)
}

// GetUser fetches one account.
func (s *DirectoryService) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrAccountNotFound
	}
	return user, err
}

// GetUserByEmail fetches the account registered with email.
func (s *DirectoryService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrAccountNotFound
	}
	return user, err
}

func clampLimit(limit int) int {
	if limit == 0 {
		return DefaultPageSize
	}
	return max(1, min(limit, MaxPageSize))
}
