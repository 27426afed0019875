package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// TokenValidator validates access tokens, see service.TokenGenerator
type TokenValidator interface {
	ValidateAccessToken(token string) (int, string, error)
}

// AuthMiddleware validates JWT access token and extracts userID and role
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, ok := authenticate(w, r, tokens)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is present and never rejects the request
func OptionalAuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if userID, role, err := tokens.ValidateAccessToken(token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), userID, role))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate writes a 401 response and returns false when the request carries no valid token
func authenticate(w http.ResponseWriter, r *http.Request, tokens TokenValidator) (context.Context, bool) {
	token := extractToken(r)
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "Authentification requise")
		return nil, false
	}

	userID, role, err := tokens.ValidateAccessToken(token)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "Jeton invalide ou expiré")
		return nil, false
	}

	return WithIdentity(r.Context(), userID, role), true
}

// extractToken reads the bearer token from the Authorization header, falling back to the access_token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
		if found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message":"` + message + `"}`))
}

// WithIdentity stores the authenticated user in ctx
func WithIdentity(ctx context.Context, userID int, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// GetRole retrieves the user role from context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}
