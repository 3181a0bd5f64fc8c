// Package sqlstore implements store.Store on top of sqlx. The queries are
// written with '?' placeholders and rebound per driver, so the sqlite and
// postgres drivers share every repository.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/jmoiron/sqlx"
)

// Dialect carries the driver specific pieces the shared repositories need.
type Dialect struct {
	// Migrate applies the driver's embedded migrations to db.
	Migrate func(db *sql.DB) error

	// UniqueViolation reports whether err is a unique constraint failure
	// and, when the driver says so, the column it was on.
	UniqueViolation func(err error) (column string, ok bool)
}

type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

func New(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle for driver level maintenance.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.dialect.Migrate == nil {
		return errors.New("sqlstore: no migrator configured")
	}
	return s.dialect.Migrate(s.db.DB)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, dialect: &s.dialect}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db, dialect: &s.dialect} }
func (s *Store) Roles() store.Roles { return &rolesRepo{db: s.db, dialect: &s.dialect} }
func (s *Store) AccountStatuses() store.AccountStatuses {
	return &statusesRepo{db: s.db, dialect: &s.dialect}
}
func (s *Store) LoginHistories() store.LoginHistories { return &loginHistoriesRepo{db: s.db} }
func (s *Store) VerificationCodes() store.VerificationCodes {
	return &verificationCodesRepo{db: s.db}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (d *Dialect) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if d.UniqueViolation != nil {
		if column, ok := d.UniqueViolation(err); ok {
			return &store.ConflictError{Column: column}
		}
	}
	return err
}

// expectRows turns an exec result that touched nothing into ErrNotFound.
func expectRows(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// insertReturningID runs a named INSERT ... RETURNING id statement.
func insertReturningID(ctx context.Context, db sqlx.ExtContext, query string, arg any) (int64, error) {
	q, args, err := db.BindNamed(query, arg)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := db.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
