package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/jmoiron/sqlx"
)

type verificationCodeRow struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	Code           string    `db:"code"`
	ExpirationDate time.Time `db:"expiration_date"`
	IsUsed         bool      `db:"is_used"`
	CreatedAt      time.Time `db:"created_at"`
}

const verificationCodeColumns = `id, email, code, expiration_date, is_used, created_at`

type verificationCodesRepo struct {
	db sqlx.ExtContext
}

func (r *verificationCodesRepo) CreateCode(ctx context.Context, c domain.VerificationCode) (int64, error) {
	return insertReturningID(ctx, r.db, `
		INSERT INTO verification_codes (email, code, expiration_date, is_used, created_at)
		VALUES (:email, :code, :expiration_date, :is_used, :created_at)
		RETURNING id`, verificationCodeRow{
		Email:          c.Email,
		Code:           c.Code,
		ExpirationDate: c.ExpirationDate.UTC(),
		IsUsed:         c.IsUsed,
		CreatedAt:      c.CreatedAt.UTC(),
	})
}

func (r *verificationCodesRepo) GetLatestUnused(ctx context.Context, email, code string) (domain.VerificationCode, error) {
	var row verificationCodeRow
	q := r.db.Rebind(`SELECT ` + verificationCodeColumns + ` FROM verification_codes
		WHERE email = ? AND code = ? AND is_used = ? ORDER BY id DESC LIMIT 1`)
	if err := sqlx.GetContext(ctx, r.db, &row, q, email, code, false); err != nil {
		return domain.VerificationCode{}, mapNotFound(err)
	}
	return domain.VerificationCode{
		ID:             row.ID,
		Email:          row.Email,
		Code:           row.Code,
		ExpirationDate: row.ExpirationDate.UTC(),
		IsUsed:         row.IsUsed,
		CreatedAt:      row.CreatedAt.UTC(),
	}, nil
}

func (r *verificationCodesRepo) MarkUsed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE verification_codes SET is_used = ? WHERE id = ? AND is_used = ?`),
		true, id, false,
	)
	return expectRows(res, err)
}

func (r *verificationCodesRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM verification_codes WHERE expiration_date < ?`),
		cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
