package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/jmoiron/sqlx"
)

type loginHistoryRow struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	LoginTimestamp  time.Time `db:"login_timestamp"`
	IPAddress       string    `db:"ip_address"`
	Device          string    `db:"device"`
	FailedAttempts  int       `db:"failed_attempts"`
	LoginSuccessful bool      `db:"login_successful"`
}

const loginHistoryColumns = `id, user_id, login_timestamp, ip_address, device, failed_attempts, login_successful`

type loginHistoriesRepo struct {
	db sqlx.ExtContext
}

func (r *loginHistoriesRepo) CreateLoginHistory(ctx context.Context, h domain.LoginHistory) (int64, error) {
	return insertReturningID(ctx, r.db, `
		INSERT INTO login_histories (user_id, login_timestamp, ip_address, device, failed_attempts, login_successful)
		VALUES (:user_id, :login_timestamp, :ip_address, :device, :failed_attempts, :login_successful)
		RETURNING id`, loginHistoryRow{
		UserID:          h.UserID,
		LoginTimestamp:  h.LoginTimestamp.UTC(),
		IPAddress:       h.IPAddress,
		Device:          h.Device,
		FailedAttempts:  h.FailedAttempts,
		LoginSuccessful: h.LoginSuccessful,
	})
}

func (r *loginHistoriesRepo) CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var n int
	q := r.db.Rebind(`
		SELECT COUNT(*) FROM login_histories
		WHERE user_id = ? AND login_successful = ? AND login_timestamp >= ?`)
	if err := sqlx.GetContext(ctx, r.db, &n, q, userID, false, since.UTC()); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *loginHistoriesRepo) GetLatest(ctx context.Context, userID int64) (domain.LoginHistory, error) {
	var row loginHistoryRow
	q := r.db.Rebind(`SELECT ` + loginHistoryColumns + ` FROM login_histories
		WHERE user_id = ? ORDER BY login_timestamp DESC, id DESC LIMIT 1`)
	if err := sqlx.GetContext(ctx, r.db, &row, q, userID); err != nil {
		return domain.LoginHistory{}, mapNotFound(err)
	}
	return mapLoginHistory(row), nil
}

func (r *loginHistoriesRepo) ListForUser(ctx context.Context, userID int64, skip, limit int) ([]domain.LoginHistory, error) {
	var rows []loginHistoryRow
	q := r.db.Rebind(`SELECT ` + loginHistoryColumns + ` FROM login_histories
		WHERE user_id = ? ORDER BY login_timestamp DESC, id DESC LIMIT ? OFFSET ?`)
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, userID, limit, skip); err != nil {
		return nil, err
	}

	out := make([]domain.LoginHistory, len(rows))
	for i, row := range rows {
		out[i] = mapLoginHistory(row)
	}
	return out, nil
}

func mapLoginHistory(row loginHistoryRow) domain.LoginHistory {
	return domain.LoginHistory{
		ID:              row.ID,
		UserID:          row.UserID,
		LoginTimestamp:  row.LoginTimestamp.UTC(),
		IPAddress:       row.IPAddress,
		Device:          row.Device,
		FailedAttempts:  row.FailedAttempts,
		LoginSuccessful: row.LoginSuccessful,
	}
}
