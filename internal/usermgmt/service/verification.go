package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/pkg/cryptox"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
)

const (
	// DefaultCodeTTL is how long a verification code stays acceptable.
	DefaultCodeTTL = 10 * time.Minute

	codeDigits = 6
)

// VerificationService issues and consumes email verification codes.
type VerificationService struct {
	Store    store.Store
	Mailer   Mailer
	Notifier Notifier
	Clock    Clock
	TTL      time.Duration

	// NewCode overrides the code generator in tests.
	NewCode func() (string, error)
}

func (s *VerificationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultCodeTTL
	}
	return s.TTL
}

func (s *VerificationService) newCode() (string, error) {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return cryptox.GenerateNumericCode(codeDigits)
}

// SendCode stores a fresh six digit code for email and mails it. Failures
// are logged and reported as false.
func (s *VerificationService) SendCode(ctx context.Context, email string) bool {
	log := slogx.FromContext(ctx)

	code, err := s.newCode()
	if err != nil {
		log.Error("failed to generate verification code", slog.Any("error", err))
		return false
	}

	now := s.Clock.now()
	_, err = s.Store.VerificationCodes().CreateCode(ctx, domain.VerificationCode{
		Email:          email,
		Code:           code,
		ExpirationDate: now.Add(s.ttl()),
		CreatedAt:      now,
	})
	if err != nil {
		log.Error("failed to store verification code", slog.Any("error", err))
		return false
	}

	if err := s.Mailer.SendVerificationCode(ctx, email, code); err != nil {
		log.Error("failed to send verification code",
			slog.String("email", email),
			slog.Any("error", err),
		)
		return false
	}

	publish(ctx, s.Notifier, now, domain.EventCodeSent, domain.User{Email: email},
		fmt.Sprintf("Verification code sent to %s.", email))
	return true
}

// ValidateCode consumes the newest unused matching code for email. It
// reports false when there is none, it has expired, or a concurrent call
// consumed it first.
func (s *VerificationService) ValidateCode(ctx context.Context, email, code string) (bool, error) {
	ok, err := s.consume(ctx, email, code)
	if !ok || err != nil {
		return ok, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventCodeValidated, domain.User{Email: email},
		fmt.Sprintf("Verification code validated for %s.", email))
	return true, nil
}

// VerifyEmail consumes a code and activates the account registered with
// email. The code stays consumed even when no such account exists.
func (s *VerificationService) VerifyEmail(ctx context.Context, email, code string) (bool, error) {
	ok, err := s.consume(ctx, email, code)
	if !ok || err != nil {
		return ok, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrAccountNotFound
	}
	if err != nil {
		return false, err
	}

	if err := s.Store.Users().UpdateAccountStatus(ctx, user.ID, domain.StatusActive); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrFailToUpdate
		}
		return false, err
	}

	publish(ctx, s.Notifier, s.Clock.now(), domain.EventEmailVerified, user,
		fmt.Sprintf("User %s has been verified.", user.Email))
	return true, nil
}

func (s *VerificationService) consume(ctx context.Context, email, code string) (bool, error) {
	vc, err := s.Store.VerificationCodes().GetLatestUnused(ctx, email, code)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if vc.Expired(s.Clock.now()) {
		return false, nil
	}

	// Conditional update so only one caller wins
	err = s.Store.VerificationCodes().MarkUsed(ctx, vc.ID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
