package middleware

import (
	"net/http"
	"slices"
)

// RoleMiddleware validates JWT access token and checks the user's role against an allow-list
//
// Missing or invalid tokens get 401, roles outside "allowed" get 403.
func RoleMiddleware(tokens TokenValidator, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := authenticate(w, r, tokens)
			if !ok {
				return
			}

			role, _ := GetRole(ctx)
			if !slices.Contains(allowed, role) {
				writeJSONError(w, http.StatusForbidden, "Accès refusé")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
