package httpx

import (
	"net/http"
	"strconv"
)

// RequireAnyRole the caller's role claim must be one of roles.
func RequireAnyRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, s := range roles {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := want[RoleFromContext(r.Context())]; ok {
				next.ServeHTTP(w, r)
				return
			}
			writeForbidden(w)
		})
	}
}

// RequireSelfOrAnyRole admits the caller when the numeric path value named
// param equals their subject, or when their role is one of roles.
func RequireSelfOrAnyRole(param string, roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, s := range roles {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := want[RoleFromContext(ctx)]; ok {
				next.ServeHTTP(w, r)
				return
			}

			// 1. Resolve the target id from the path.
			target, err := strconv.ParseInt(r.PathValue(param), 10, 64)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid "+param)
				return
			}

			// 2. Compare against the caller.
			if self, ok := UserIDFromContext(ctx); ok && self == target {
				next.ServeHTTP(w, r)
				return
			}

			writeForbidden(w)
		})
	}
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
	WriteError(w, http.StatusForbidden, "Forbidden: insufficient role")
}
