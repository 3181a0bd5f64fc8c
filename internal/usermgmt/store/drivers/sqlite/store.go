package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store/drivers/sqlstore"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DSN builds a modernc sqlite data source for a database file with the
// pragmas the store relies on. Timestamps are written in the sqlite text
// format so range comparisons work lexically.
func DSN(file string) string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite&_txlock=immediate",
		file,
	)
}

func NewStore(dsn string) (*sqlstore.Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs even when the DSN did not ask for it
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, sqlstore.Dialect{
		Migrate:           applyMigrations,
		UniqueViolation: uniqueViolation,
	}), nil
}

const uniqueFailedPrefix = "UNIQUE constraint failed: "

// uniqueViolation reads the column out of messages such as
// "constraint failed: UNIQUE constraint failed: users.email (2067)".
// Composite constraints report their first column.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	_, rest, ok := strings.Cut(err.Error(), uniqueFailedPrefix)
	if !ok {
		return "", false
	}
	rest, _, _ = strings.Cut(rest, " (")
	rest, _, _ = strings.Cut(rest, ",")
	_, column, found := strings.Cut(strings.TrimSpace(rest), ".")
	if !found {
		return "", true
	}
	return column, true
}
