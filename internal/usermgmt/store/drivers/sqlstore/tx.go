package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/jmoiron/sqlx"
)

type txStore struct {
	tx      *sqlx.Tx
	dialect *Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions, the connection is held by the tx.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users { return &usersRepo{db: t.tx, dialect: t.dialect} }
func (t *txStore) Roles() store.Roles { return &rolesRepo{db: t.tx, dialect: t.dialect} }
func (t *txStore) AccountStatuses() store.AccountStatuses {
	return &statusesRepo{db: t.tx, dialect: t.dialect}
}
func (t *txStore) LoginHistories() store.LoginHistories { return &loginHistoriesRepo{db: t.tx} }
func (t *txStore) VerificationCodes() store.VerificationCodes {
	return &verificationCodesRepo{db: t.tx}
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations are applied before any tx
