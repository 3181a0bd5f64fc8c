package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/pkg/cryptox"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

var (
	ErrBootstrapAlready             = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized        = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin user")
)

// BootstrapService creates the first platform admin.
type BootstrapService struct {
	Store  store.Store
	Hasher Hasher
	Token  string // Pre-configured bootstrap token; empty disables bootstrap
}

// IsBootstrapped reports whether any platform admin exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	n, err := s.Store.Users().CountUsersWithRole(ctx, domain.RolePlatformAdmin)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Bootstrap creates an Active platform admin from req when the token
// matches and no admin exists yet. An empty password is generated and
// returned once in the result.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (domain.BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate provided token
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.BootstrapResult{}, ErrBootstrapUnauthorized
	}

	// 2. Generate the password when none was given, then hash it
	var generated string
	if req.AdminPassword == "" {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			l.Error("failed to generate admin password", slog.Any("error", err))
			return domain.BootstrapResult{}, ErrBootstrapFailedToCreateAdmin
		}
		req.AdminPassword, generated = pw, pw
	}
	passHash, err := s.Hasher.Hash(req.AdminPassword)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.BootstrapResult{}, ErrBootstrapFailedToCreateAdmin
	}

	// 3. Check and create atomically
	var adminID int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Users().CountUsersWithRole(ctx, domain.RolePlatformAdmin)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBootstrapAlready
		}

		adminID, err = tx.Users().CreateUser(ctx, domain.User{
			Username:        req.AdminUsername,
			Email:           req.AdminEmail,
			PasswordHash:    passHash,
			RoleID:          domain.RolePlatformAdmin,
			AccountStatusID: domain.StatusActive,
			Profile:         domain.DefaultProfile(domain.RolePlatformAdmin),
		})
		if err != nil {
			l.Error("failed to create admin user", slog.Any("error", err))
			return fmt.Errorf("%w: %w", ErrBootstrapFailedToCreateAdmin, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBootstrapAlready) {
			l.Warn("attempted bootstrap on already-bootstrapped system")
		}
		return domain.BootstrapResult{}, err
	}

	l.Info("successfully bootstrapped system",
		slog.Int64("admin_user_id", adminID),
		slog.Bool("generated_password", generated != ""),
	)
	admin, err := s.Store.Users().GetUserByID(ctx, adminID)
	if err != nil {
		return domain.BootstrapResult{}, err
	}
	return domain.BootstrapResult{Admin: admin, GeneratedPassword: generated}, nil
}
