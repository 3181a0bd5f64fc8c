package usermgmt_test

import (
	"testing"

	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
	"github.com/stretchr/testify/require"
)

// TestBootstrapOnlyOnce verifies the setup endpoint locks after first use.
func TestBootstrapOnlyOnce(t *testing.T) {
	svc := setupContainer(t)
	client := usersdk.NewClient(svc.BaseURL)

	_, err := client.Bootstrap(t.Context(), "wrong-token", usersdk.BootstrapRequest{
		AdminUsername: adminUsername, AdminEmail: adminEmail, AdminPassword: adminPassword,
	})
	require.True(t, usersdk.IsUnauthorized(err), "got %v", err)

	bootstrapAdmin(t, client)

	_, err = client.Bootstrap(t.Context(), bootstrapToken, usersdk.BootstrapRequest{
		AdminUsername: "secondadmin", AdminEmail: "second@example.com", AdminPassword: adminPassword,
	})
	require.True(t, usersdk.IsConflict(err), "got %v", err)
}

// TestAdminUserManagement exercises the admin only directory endpoints.
func TestAdminUserManagement(t *testing.T) {
	svc := setupContainer(t)
	client := usersdk.NewClient(svc.BaseURL)
	ctx := t.Context()

	admin := bootstrapAdmin(t, client)
	viewer := registerUser(t, client, "viewer03", "viewer03@example.com", "Viewer123!", roleViewer)
	viewerSession := login(t, client, "viewer03", "Viewer123!")

	_, err := viewerSession.CountUsers(ctx)
	require.True(t, usersdk.IsForbidden(err), "got %v", err)

	total, err := admin.CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	page, err := admin.ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	require.Zero(t, page.NextCursor)

	found, err := admin.QueryUsers(ctx, "email", "viewer03", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)

	role, err := admin.ChangeRole(ctx, viewer.ID, roleContentCreator)
	require.NoError(t, err)
	require.Equal(t, roleContentCreator, role.ID)

	profile, err := admin.GetProfile(ctx, usersdk.ProfileContentCreator, viewer.ID)
	require.NoError(t, err)
	require.Equal(t, usersdk.ProfileContentCreator, profile.Profile.Kind)

	require.NoError(t, admin.RemoveUser(ctx, viewer.ID))
	err = admin.RemoveUser(ctx, viewer.ID)
	require.True(t, usersdk.IsNotFound(err), "got %v", err)
}

// TestRolesAndStatuses covers the reference data administration.
func TestRolesAndStatuses(t *testing.T) {
	svc := setupContainer(t)
	client := usersdk.NewClient(svc.BaseURL)
	ctx := t.Context()

	admin := bootstrapAdmin(t, client)

	roles, err := admin.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 4)

	created, err := admin.CreateRole(ctx, usersdk.RoleRequest{
		Name:        "Moderator",
		Description: "Moderates comments",
		Permissions: []usersdk.PermissionRequest{{PermissionID: 1, Name: "comments:hide"}},
	})
	require.NoError(t, err)
	require.Len(t, created.Permissions, 1)

	perm, err := admin.UpdatePermission(ctx, created.Permissions[0].ID, usersdk.PermissionRequest{
		PermissionID: 1, Name: "comments:remove",
	})
	require.NoError(t, err)
	require.Equal(t, "comments:remove", perm.Name)

	require.NoError(t, admin.DeleteRole(ctx, created.ID))

	status, err := admin.CreateAccountStatus(ctx, usersdk.AccountStatusRequest{Name: "Suspended"})
	require.NoError(t, err)

	statuses, err := admin.ListAccountStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 11)

	require.NoError(t, admin.DeleteAccountStatus(ctx, status.ID))
}
