package httpx

import (
	"context"
	"strconv"

	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
	CtxKeyEmail  ctxKey = "email"
	CtxKeyClaims ctxKey = "claims"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyEmail, c.Name)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// UserIDFromContext returns the numeric subject of the authenticated caller.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	sub, ok := ctx.Value(CtxKeyUserID).(string)
	if !ok || sub == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// RoleFromContext returns the role claim of the authenticated caller.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(CtxKeyRole).(string)
	return role
}

// EmailFromContext returns the name claim, which carries the caller's email.
func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(CtxKeyEmail).(string)
	return email
}

// ClaimsFromContext returns the full verified claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// WithClaims is exported for handler tests that bypass token verification.
func WithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	return contextWithAuth(ctx, c)
}
