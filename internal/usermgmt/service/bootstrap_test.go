package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	svc := &BootstrapService{Store: f.store, Hasher: testHasher, Token: "let-me-in"}
	req := domain.BootstrapData{AdminUsername: "root01", AdminEmail: "root@x.com", AdminPassword: "hunter22"}

	done, err := svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	_, err = svc.Bootstrap(ctx, "wrong", req)
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	res, err := svc.Bootstrap(ctx, "let-me-in", req)
	require.NoError(t, err)
	require.Empty(t, res.GeneratedPassword)
	admin := res.Admin
	require.Equal(t, domain.RolePlatformAdmin, admin.RoleID)
	require.Equal(t, domain.StatusActive, admin.AccountStatusID)
	require.Equal(t, domain.ProfilePlatformAdmin, admin.Profile.Kind)

	_, err = f.accounts.Login(ctx, "root@x.com", "hunter22", lc)
	require.NoError(t, err)

	_, err = svc.Bootstrap(ctx, "let-me-in", req)
	require.ErrorIs(t, err, ErrBootstrapAlready)

	t.Run("empty password is generated", func(t *testing.T) {
		g := newFixture(t)
		svc := &BootstrapService{Store: g.store, Hasher: testHasher, Token: "let-me-in"}

		res, err := svc.Bootstrap(ctx, "let-me-in", domain.BootstrapData{AdminUsername: "root02", AdminEmail: "root2@x.com"})
		require.NoError(t, err)
		require.Len(t, res.GeneratedPassword, 12)

		_, err = g.accounts.Login(ctx, "root02", res.GeneratedPassword, lc)
		require.NoError(t, err)
	})

	t.Run("empty token disables bootstrap", func(t *testing.T) {
		off := &BootstrapService{Store: f.store, Hasher: testHasher}
		_, err := off.Bootstrap(ctx, "", req)
		require.ErrorIs(t, err, ErrBootstrapUnauthorized)
	})
}
