package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/jmoiron/sqlx"
)

type statusRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const statusColumns = `id, name, description, created_at, updated_at`

type statusesRepo struct {
	db      sqlx.ExtContext
	dialect *Dialect
}

func (r *statusesRepo) GetStatusByID(ctx context.Context, id int64) (domain.AccountStatus, error) {
	var row statusRow
	q := r.db.Rebind(`SELECT ` + statusColumns + ` FROM account_statuses WHERE id = ?`)
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return domain.AccountStatus{}, mapNotFound(err)
	}
	return mapStatus(row), nil
}

func (r *statusesRepo) ListAll(ctx context.Context) ([]domain.AccountStatus, error) {
	var rows []statusRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT `+statusColumns+` FROM account_statuses ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]domain.AccountStatus, len(rows))
	for i, row := range rows {
		out[i] = mapStatus(row)
	}
	return out, nil
}

func (r *statusesRepo) CreateStatus(ctx context.Context, s domain.AccountStatus) (int64, error) {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO account_statuses (name, description, created_at, updated_at)
		VALUES (:name, :description, :created_at, :updated_at)
		RETURNING id`, statusRow{
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return id, r.dialect.mapWriteErr(err)
}

func (r *statusesRepo) UpdateStatus(ctx context.Context, s domain.AccountStatus) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE account_statuses SET name = ?, description = ?, updated_at = ? WHERE id = ?`),
		s.Name, s.Description, time.Now().UTC(), s.ID,
	)
	return expectRows(res, r.dialect.mapWriteErr(err))
}

func (r *statusesRepo) DeleteStatus(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM account_statuses WHERE id = ?`), id)
	return expectRows(res, err)
}

func mapStatus(row statusRow) domain.AccountStatus {
	return domain.AccountStatus{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}
