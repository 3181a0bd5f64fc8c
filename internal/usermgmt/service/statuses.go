package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
)

var (
	ErrStatusNotFound      = errors.New("account status not found")
	ErrStatusAlreadyExists = errors.New("account status already exists")
	ErrStatusInUse         = errors.New("account status is still assigned to users")
	ErrInvalidStatus       = errors.New("account status name is required")
)

// AccountStatusService manages the account status reference data.
type AccountStatusService struct {
	Store store.Store
}

func (s *AccountStatusService) ListStatuses(ctx context.Context) ([]domain.AccountStatus, error) {
	return s.Store.AccountStatuses().ListAll(ctx)
}

func (s *AccountStatusService) GetStatus(ctx context.Context, id int64) (domain.AccountStatus, error) {
	st, err := s.Store.AccountStatuses().GetStatusByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.AccountStatus{}, ErrStatusNotFound
	}
	return st, err
}

func (s *AccountStatusService) CreateStatus(ctx context.Context, st domain.AccountStatus) (domain.AccountStatus, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return domain.AccountStatus{}, ErrInvalidStatus
	}

	id, err := s.Store.AccountStatuses().CreateStatus(ctx, st)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.AccountStatus{}, ErrStatusAlreadyExists
	}
	if err != nil {
		return domain.AccountStatus{}, err
	}
	return s.Store.AccountStatuses().GetStatusByID(ctx, id)
}

func (s *AccountStatusService) UpdateStatus(ctx context.Context, st domain.AccountStatus) (domain.AccountStatus, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return domain.AccountStatus{}, ErrInvalidStatus
	}

	err := s.Store.AccountStatuses().UpdateStatus(ctx, st)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.AccountStatus{}, ErrStatusNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.AccountStatus{}, ErrStatusAlreadyExists
	case err != nil:
		return domain.AccountStatus{}, err
	}
	return s.Store.AccountStatuses().GetStatusByID(ctx, st.ID)
}

// DeleteStatus removes a status no user is in.
func (s *AccountStatusService) DeleteStatus(ctx context.Context, id int64) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Users().CountUsersWithStatus(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrStatusInUse
		}

		err = tx.AccountStatuses().DeleteStatus(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrStatusNotFound
		}
		return err
	})
}
