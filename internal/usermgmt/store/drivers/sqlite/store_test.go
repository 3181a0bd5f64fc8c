package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store/drivers/sqlite"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store/storetest"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "usermgmt.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	// Applying twice is a no-op
	require.NoError(t, s.ApplyMigrations())

	storetest.Run(t, s)
}
