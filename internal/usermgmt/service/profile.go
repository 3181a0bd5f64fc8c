package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService reads and writes the role specific part of an account.
type ProfileService struct {
	Store    store.Store
	Notifier Notifier
	Clock    Clock
}

// GetProfile returns the account with its profile when the profile is of
// the requested kind.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64, kind domain.ProfileKind) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrProfileNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	if user.Profile.Kind != kind {
		return domain.User{}, ErrProfileNotFound
	}
	return user, nil
}

// UpdateProfile replaces the profile of an account whose profile is
// already of p.Kind.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, p domain.Profile) (domain.User, error) {
	user, err := s.GetProfile(ctx, userID, p.Kind)
	if err != nil {
		return domain.User{}, err
	}

	p = p.Normalize(user.RoleID)
	if p.Kind != user.Profile.Kind {
		return domain.User{}, ErrProfileNotFound
	}

	now := s.Clock.now()
	if err := checkAdult(p.DateOfBirth(), now); err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrFailToUpdate
		}
		return domain.User{}, err
	}
	user.Profile = p

	publish(ctx, s.Notifier, now, domain.EventUserUpdated, user,
		fmt.Sprintf("User %s has updated their profile.", user.Username))
	return user, nil
}
