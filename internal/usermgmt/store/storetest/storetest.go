// Package storetest holds a conformance suite every store driver must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/stretchr/testify/require"
)

// Run exercises s, which must have migrations applied and no users.
func Run(t *testing.T, s store.Store) {
	t.Helper()

	t.Run("seeded reference data", func(t *testing.T) { testSeeds(t, s) })
	t.Run("users", func(t *testing.T) { testUsers(t, s) })
	t.Run("user queries", func(t *testing.T) { testUserQueries(t, s) })
	t.Run("roles", func(t *testing.T) { testRoles(t, s) })
	t.Run("account statuses", func(t *testing.T) { testStatuses(t, s) })
	t.Run("login history", func(t *testing.T) { testLoginHistory(t, s) })
	t.Run("verification codes", func(t *testing.T) { testVerificationCodes(t, s) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, s) })
}

func newUser(username, email string, roleID int64) domain.User {
	return domain.User{
		Username:        username,
		Email:           email,
		PasswordHash:    "$2a$10$hash",
		RoleID:          roleID,
		AccountStatusID: domain.StatusActive,
		Profile:         domain.DefaultProfile(roleID),
	}
}

func testSeeds(t *testing.T, s store.Store) {
	ctx := context.Background()

	statuses, err := s.AccountStatuses().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 10)
	require.Equal(t, "Active", statuses[domain.StatusActive-1].Name)
	require.Equal(t, "Logged-Out", statuses[domain.StatusLoggedOut-1].Name)

	roles, err := s.Roles().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 4)

	admin, err := s.Roles().GetRoleByID(ctx, domain.RolePlatformAdmin)
	require.NoError(t, err)
	require.Equal(t, "PlatformAdmin", admin.Name)
	require.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Equal(admin.CreatedAt))
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	u := newUser("storeuser1", "storeuser1@example.com", domain.RoleContentCreator)
	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	u.Profile.ContentCreator.DateOfBirth = &dob
	u.Profile.ContentCreator.Biography = "makes films"

	id, err := users.CreateUser(ctx, u)
	require.NoError(t, err)
	require.NotZero(t, id)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := users.CreateUser(ctx, newUser("storeuser1", "other@example.com", domain.RoleViewer))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
		require.Equal(t, "username", store.ConflictColumn(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.CreateUser(ctx, newUser("otheruser", "storeuser1@example.com", domain.RoleViewer))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
		require.Equal(t, "email", store.ConflictColumn(err))
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := users.GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "storeuser1", got.Username)
		require.Equal(t, domain.ProfileContentCreator, got.Profile.Kind)
		require.Equal(t, "makes films", got.Profile.ContentCreator.Biography)
		require.True(t, dob.Equal(*got.Profile.ContentCreator.DateOfBirth))

		byName, err := users.GetUserByIdentifier(ctx, "storeuser1")
		require.NoError(t, err)
		require.Equal(t, id, byName.ID)

		byEmail, err := users.GetUserByIdentifier(ctx, "storeuser1@example.com")
		require.NoError(t, err)
		require.Equal(t, id, byEmail.ID)

		_, err = users.GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("updates", func(t *testing.T) {
		require.NoError(t, users.UpdateAccountStatus(ctx, id, domain.StatusLoggedOut))
		require.NoError(t, users.UpdatePasswordHash(ctx, id, "$2a$10$other"))
		require.NoError(t, users.UpdateRole(ctx, id, domain.RoleViewer, domain.DefaultProfile(domain.RoleViewer)))

		got, err := users.GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, domain.StatusLoggedOut, got.AccountStatusID)
		require.Equal(t, "$2a$10$other", got.PasswordHash)
		require.Equal(t, domain.RoleViewer, got.RoleID)
		require.Equal(t, domain.ProfileViewer, got.Profile.Kind)
		require.Nil(t, got.Profile.ContentCreator)

		got.Country = "AU"
		require.NoError(t, users.UpdateUser(ctx, got))
		got, err = users.GetUserByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "AU", got.Country)

		require.ErrorIs(t, users.UpdateAccountStatus(ctx, 999999, domain.StatusActive), store.ErrNotFound)
	})

	t.Run("delete cascades history", func(t *testing.T) {
		victim, err := users.CreateUser(ctx, newUser("storevictim", "victim@example.com", domain.RoleViewer))
		require.NoError(t, err)
		_, err = s.LoginHistories().CreateLoginHistory(ctx, domain.LoginHistory{
			UserID:         victim,
			LoginTimestamp: time.Now().UTC(),
		})
		require.NoError(t, err)

		require.NoError(t, users.DeleteUser(ctx, victim))
		require.ErrorIs(t, users.DeleteUser(ctx, victim), store.ErrNotFound)

		_, err = s.LoginHistories().GetLatest(ctx, victim)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testUserQueries(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	before, err := users.CountUsers(ctx)
	require.NoError(t, err)

	for _, name := range []string{"queryalpha", "queryBETA", "query_gamma"} {
		_, err := users.CreateUser(ctx, newUser(name, name+"@query.test", domain.RoleProductionCompany))
		require.NoError(t, err)
	}

	after, err := users.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, before+3, after)

	got, err := users.QueryUsers(ctx, domain.UserFilter{Key: domain.FilterUsername, Text: "QUERY"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	got, err = users.QueryUsers(ctx, domain.UserFilter{Key: domain.FilterUsername, Text: "y_g"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "query_gamma", got[0].Username)

	got, err = users.QueryUsers(ctx, domain.UserFilter{Key: domain.FilterRoleID, ID: domain.RoleProductionCompany}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	n, err := users.CountUsersWithRole(ctx, domain.RoleProductionCompany)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	page, err := users.ListUsers(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Less(t, page[0].ID, page[1].ID)

	next, err := users.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.NotEmpty(t, next)
	require.Greater(t, next[0].ID, page[1].ID)
}

func testRoles(t *testing.T, s store.Store) {
	ctx := context.Background()
	roles := s.Roles()

	id, err := roles.CreateRole(ctx, domain.Role{
		Name:        "Moderator",
		Description: "Moderates content",
		Permissions: []domain.RolePermission{
			{PermissionID: 1, Name: "content:flag"},
			{PermissionID: 2, Name: "content:hide"},
		},
	})
	require.NoError(t, err)

	role, err := roles.GetRoleByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, role.Permissions, 2)
	require.Equal(t, "content:flag", role.Permissions[0].Name)

	_, err = roles.CreateRole(ctx, domain.Role{Name: "Moderator"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	role.Description = "Moderates everything"
	role.Permissions = []domain.RolePermission{{PermissionID: 3, Name: "content:delete"}}
	require.NoError(t, roles.UpdateRole(ctx, role))

	role, err = roles.GetRoleByName(ctx, "Moderator")
	require.NoError(t, err)
	require.Equal(t, "Moderates everything", role.Description)
	require.Len(t, role.Permissions, 1)

	perm := role.Permissions[0]
	perm.Description = "Delete any content"
	require.NoError(t, roles.UpdatePermission(ctx, perm))
	perm, err = roles.GetPermissionByID(ctx, perm.ID)
	require.NoError(t, err)
	require.Equal(t, "Delete any content", perm.Description)

	require.NoError(t, roles.DeleteRole(ctx, id))
	_, err = roles.GetPermissionByID(ctx, perm.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testStatuses(t *testing.T, s store.Store) {
	ctx := context.Background()
	statuses := s.AccountStatuses()

	id, err := statuses.CreateStatus(ctx, domain.AccountStatus{Name: "Suspended", Description: "Temporarily suspended"})
	require.NoError(t, err)
	require.Greater(t, id, domain.StatusFinalState)

	require.NoError(t, statuses.UpdateStatus(ctx, domain.AccountStatus{ID: id, Name: "Suspended", Description: "On hold"}))
	got, err := statuses.GetStatusByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "On hold", got.Description)

	require.NoError(t, statuses.DeleteStatus(ctx, id))
	_, err = statuses.GetStatusByID(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testLoginHistory(t *testing.T, s store.Store) {
	ctx := context.Background()

	userID, err := s.Users().CreateUser(ctx, newUser("historyuser", "history@example.com", domain.RoleViewer))
	require.NoError(t, err)

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	entries := []domain.LoginHistory{
		{UserID: userID, LoginTimestamp: midnight.Add(-time.Hour), LoginSuccessful: false},
		{UserID: userID, LoginTimestamp: midnight.Add(time.Minute), LoginSuccessful: false},
		{UserID: userID, LoginTimestamp: midnight.Add(2 * time.Minute), LoginSuccessful: true, IPAddress: "10.0.0.1"},
	}
	for _, e := range entries {
		_, err := s.LoginHistories().CreateLoginHistory(ctx, e)
		require.NoError(t, err)
	}

	failed, err := s.LoginHistories().CountFailedSince(ctx, userID, midnight)
	require.NoError(t, err)
	require.Equal(t, 1, failed)

	latest, err := s.LoginHistories().GetLatest(ctx, userID)
	require.NoError(t, err)
	require.True(t, latest.LoginSuccessful)
	require.Equal(t, "10.0.0.1", latest.IPAddress)

	page, err := s.LoginHistories().ListForUser(ctx, userID, 1, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.False(t, page[0].LoginSuccessful)
}

func testVerificationCodes(t *testing.T, s store.Store) {
	ctx := context.Background()
	codes := s.VerificationCodes()
	now := time.Now().UTC()

	_, err := codes.CreateCode(ctx, domain.VerificationCode{
		Email: "codes@example.com", Code: "123456", ExpirationDate: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	newest, err := codes.CreateCode(ctx, domain.VerificationCode{
		Email: "codes@example.com", Code: "123456", ExpirationDate: now.Add(10 * time.Minute), CreatedAt: now,
	})
	require.NoError(t, err)

	got, err := codes.GetLatestUnused(ctx, "codes@example.com", "123456")
	require.NoError(t, err)
	require.Equal(t, newest, got.ID)
	require.False(t, got.IsUsed)

	require.NoError(t, codes.MarkUsed(ctx, got.ID))
	require.ErrorIs(t, codes.MarkUsed(ctx, got.ID), store.ErrNotFound)

	deleted, err := codes.DeleteExpiredBefore(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = codes.GetLatestUnused(ctx, "codes@example.com", "123456")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().CreateUser(ctx, newUser("txrollback", "txrollback@example.com", domain.RoleViewer)); err != nil {
			return err
		}
		return store.ErrNotFound
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByUsername(ctx, "txrollback")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, newUser("txcommit", "txcommit@example.com", domain.RoleViewer))
		return err
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByUsername(ctx, "txcommit")
	require.NoError(t, err)
}
