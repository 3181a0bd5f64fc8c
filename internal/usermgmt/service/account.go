package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

// AccountService owns the self-service side of the lifecycle: login,
// logout, deactivation, password reset and account updates.
type AccountService struct {
	Store    store.Store
	Hasher   Hasher
	Notifier Notifier
	Clock    Clock
}

// AccountUpdate carries the fields a user may change on their own account.
// Empty fields are left untouched.
type AccountUpdate struct {
	Username       string
	Email          string
	Password       string
	RecoveryEmail  string
	PhoneNumber    string
	ProfileImgPath string
	Country        string
	State          string
	ZipCode        string
}

// Login authenticates identifier (username or email) with password.
//
// A failed attempt appends a history row and leaves the status untouched.
// A successful one moves the account to Active and appends its history row
// in the same transaction.
func (s *AccountService) Login(
	ctx context.Context,
	identifier, password string,
	lc domain.LoginContext,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Resolve the account
	user, err := s.Store.Users().GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	// 2. Failures so far today are recorded on the new row
	now := s.Clock.now()
	failed, err := s.Store.LoginHistories().CountFailedSince(ctx, user.ID, startOfDay(now))
	if err != nil {
		return domain.User{}, err
	}
	entry := domain.LoginHistory{
		UserID:         user.ID,
		LoginTimestamp: now,
		IPAddress:      lc.IPAddress,
		Device:         lc.Device,
		FailedAttempts: failed,
	}

	// 3. Wrong password
	if !s.Hasher.Verify(password, user.PasswordHash) {
		if _, err := s.Store.LoginHistories().CreateLoginHistory(ctx, entry); err != nil {
			return domain.User{}, fmt.Errorf("record failed login: %w", err)
		}
		log.Info("login failed",
			slog.Int64("user_id", user.ID),
			slog.Int("failed_attempts_today", failed+1),
		)
		return domain.User{}, ErrWrongCredentials
	}

	// 4. Activate and record in one transaction
	entry.LoginSuccessful = true
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateAccountStatus(ctx, user.ID, domain.StatusActive); err != nil {
			return err
		}
		_, err := tx.LoginHistories().CreateLoginHistory(ctx, entry)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrFailToUpdate
	}
	if err != nil {
		return domain.User{}, err
	}
	user.AccountStatusID = domain.StatusActive

	publish(ctx, s.Notifier, now, domain.EventUserLoggedIn, user,
		fmt.Sprintf("User %s has logged in.", user.Username))
	log.Info("login succeeded", slog.Int64("user_id", user.ID))
	return user, nil
}

// Logout moves the account to LoggedOut. It reports false without error
// when the account was already logged out.
func (s *AccountService) Logout(ctx context.Context, identifier string) (bool, error) {
	user, err := s.Store.Users().GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrAccountNotFound
	}
	if err != nil {
		return false, err
	}

	if user.AccountStatusID == domain.StatusLoggedOut {
		return false, nil
	}

	err = s.Store.Users().UpdateAccountStatus(ctx, user.ID, domain.StatusLoggedOut)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrFailToUpdate
	}
	if err != nil {
		return false, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventUserLoggedOut, user,
		fmt.Sprintf("User %s has logged out.", user.Username))
	return true, nil
}

// DeactivateAccount moves the account to Deactivated.
func (s *AccountService) DeactivateAccount(ctx context.Context, userID int64) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	// The reference row must exist; a missing one is a seeding problem
	if _, err := s.Store.AccountStatuses().GetStatusByID(ctx, domain.StatusDeactivated); err != nil {
		slogx.FromContext(ctx).Error("deactivated status missing from reference data", slog.Any("error", err))
		return ErrFailToDeactivate
	}

	if err := s.Store.Users().UpdateAccountStatus(ctx, userID, domain.StatusDeactivated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrFailToDeactivate
		}
		return err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventUserDeactivated, user,
		fmt.Sprintf("User %s has been deactivated.", user.Username))
	return nil
}

// ResetPassword stores a new password for the account registered with
// email. The caller must have validated a verification code first. It
// reports false when no such account exists.
func (s *AccountService) ResetPassword(ctx context.Context, email, newPassword string) (bool, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrFailToUpdate
		}
		return false, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventPasswordReset, user,
		fmt.Sprintf("User %s has reset their password.", user.Username))
	return true, nil
}

// UpdateAccount applies the non-empty fields of upd to the account.
// The password is rehashed only when it differs from the stored one.
func (s *AccountService) UpdateAccount(ctx context.Context, userID int64, upd AccountUpdate) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrFailToRetrieveAccountInfo
	}
	if err != nil {
		return domain.User{}, err
	}

	changed := false

	// 1. Identity fields must stay unique
	if upd.Username != "" && upd.Username != user.Username {
		if err := s.ensureFree(ctx, s.Store.Users().GetUserByUsername, upd.Username, userID, ErrUsernameAlreadyExists); err != nil {
			return domain.User{}, err
		}
		user.Username = upd.Username
		changed = true
	}
	if upd.Email != "" && upd.Email != user.Email {
		if err := s.ensureFree(ctx, s.Store.Users().GetUserByEmail, upd.Email, userID, ErrEmailAlreadyExists); err != nil {
			return domain.User{}, err
		}
		user.Email = upd.Email
		changed = true
	}

	// 2. Password
	if upd.Password != "" && !s.Hasher.Verify(upd.Password, user.PasswordHash) {
		hash, err := s.Hasher.Hash(upd.Password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
		changed = true
	}

	// 3. Plain fields
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&user.RecoveryEmail, upd.RecoveryEmail},
		{&user.PhoneNumber, upd.PhoneNumber},
		{&user.ProfileImgPath, upd.ProfileImgPath},
		{&user.Country, upd.Country},
		{&user.State, upd.State},
		{&user.ZipCode, upd.ZipCode},
	} {
		if f.src != "" && f.src != *f.dst {
			*f.dst = f.src
			changed = true
		}
	}

	if !changed {
		return user, nil
	}

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, userConflict(err)
		}
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("account update affected no rows",
				slog.Int64("user_id", userID),
				slog.Any("error", err),
			)
			return domain.User{}, ErrFailToUpdate
		}
		return domain.User{}, err
	}

	updated, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventUserUpdated, updated,
		fmt.Sprintf("User %s has been updated.", updated.Username))
	return updated, nil
}

func (s *AccountService) ensureFree(
	ctx context.Context,
	lookup func(context.Context, string) (domain.User, error),
	value string,
	selfID int64,
	conflict error,
) error {
	other, err := lookup(ctx, value)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return conflict
	}
	return nil
}

// GetLoginStatus returns the most recent login attempt of the account.
func (s *AccountService) GetLoginStatus(ctx context.Context, userID int64) (domain.LoginHistory, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginHistory{}, ErrAccountNotFound
		}
		return domain.LoginHistory{}, err
	}

	h, err := s.Store.LoginHistories().GetLatest(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.LoginHistory{}, ErrFailToRetrieveAccountInfo
	}
	return h, err
}

// MaxPageSize bounds every paged listing.
const MaxPageSize = 100

// GetLoginHistory returns login attempts newest first.
func (s *AccountService) GetLoginHistory(ctx context.Context, userID int64, skip, limit int) ([]domain.LoginHistory, error) {
	if skip < 0 || limit <= 0 {
		return nil, ErrFailToMeetCriteria
	}
	limit = min(limit, MaxPageSize)

	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.Store.LoginHistories().ListForUser(ctx, userID, skip, limit)
}
