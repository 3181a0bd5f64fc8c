// Package service implements the account lifecycle on top of store.Store.
// Every operation takes the acting user or credential explicitly.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/pkg/idx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

var (
	ErrAccountNotFound           = errors.New("account not found")
	ErrWrongCredentials          = errors.New("wrong credentials")
	ErrUsernameAlreadyExists     = errors.New("username already exists")
	ErrEmailAlreadyExists        = errors.New("email already exists")
	ErrFailToUpdate              = errors.New("failed to update account")
	ErrFailToDeactivate          = errors.New("failed to deactivate account")
	ErrFailToRetrieveAccountInfo = errors.New("failed to retrieve account info")
	ErrFailToMeetCriteria        = errors.New("value does not meet the criteria")
	ErrUnknownFilterKey          = errors.New("unknown filter property")
	ErrUnderage                  = errors.New("user must be at least 18 years old")
)

// Hasher hashes and verifies credentials. Verify must fail closed.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Notifier accepts lifecycle events for fan-out. Notify must never block.
type Notifier interface {
	Notify(e domain.Event)
}

// Mailer delivers verification codes.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// Clock returns the current time. Nil means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// userConflict maps a unique constraint failure on users, which the lookups
// before the write did not catch, onto the matching sentinel.
func userConflict(err error) error {
	switch store.ConflictColumn(err) {
	case "email":
		return ErrEmailAlreadyExists
	case "username":
		return ErrUsernameAlreadyExists
	}
	return err
}

// publish hands an event to n. A nil notifier drops it.
func publish(ctx context.Context, n Notifier, now time.Time, typ domain.EventType, u domain.User, msg string) {
	if n == nil {
		return
	}
	n.Notify(domain.Event{
		ID:         idx.NewAt(now).String(),
		Type:       typ,
		Audience:   domain.AdminAudience,
		UserID:     u.ID,
		Email:      u.Email,
		Message:    msg,
		OccurredAt: now,
	})
	slogx.FromContext(ctx).Debug("event published",
		slog.String("type", string(typ)),
		slog.Int64("user_id", u.ID),
	)
}

// startOfDay returns midnight UTC of the day containing t.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// checkAdult rejects birth dates less than 18 years before now.
func checkAdult(dob *time.Time, now time.Time) error {
	if dob == nil {
		return nil
	}
	if dob.AddDate(18, 0, 0).After(now) {
		return ErrUnderage
	}
	return nil
}
