// Package handlers exposes the MADAURE services over HTTP
package handlers

import (
	"net/http"
	"strconv"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	authMiddleware "github.com/madaure/backend/libs/auth/middleware"
	"github.com/madaure/backend/libs/handlers"
)

// Guards holds the authentication middlewares applied to private routes
type Guards struct {
	// Auth accepts any authenticated user
	Auth func(http.Handler) http.Handler
	// Student accepts students only
	Student func(http.Handler) http.Handler
	// Teacher accepts teachers and admins
	Teacher func(http.Handler) http.Handler
	// Admin accepts admins only
	Admin func(http.Handler) http.Handler
	// Optional attaches the identity of a valid token and lets anonymous requests through
	Optional func(http.Handler) http.Handler
}

// NewGuards builds the route guards from an access token validator
func NewGuards(tokens authMiddleware.TokenValidator) Guards {
	return Guards{
		Auth:     authMiddleware.AuthMiddleware(tokens),
		Student:  authMiddleware.RoleMiddleware(tokens, string(models.RoleStudent)),
		Teacher:  authMiddleware.RoleMiddleware(tokens, string(models.RoleTeacher), string(models.RoleAdmin)),
		Admin:    authMiddleware.RoleMiddleware(tokens, string(models.RoleAdmin)),
		Optional: authMiddleware.OptionalAuthMiddleware(tokens),
	}
}

// currentUser reads the identity set by the auth middlewares, answering 401 when it is missing
//
// Returns false when a response has already been written.
func currentUser(base *handlers.BaseHandler, w http.ResponseWriter, r *http.Request) (int, models.Role, bool) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		base.RespondError(w, http.StatusUnauthorized, handlers.MessageUnauthorized)
		return 0, "", false
	}
	role, _ := authMiddleware.GetRole(r.Context())
	return userID, models.Role(role), true
}

// viewer reads the identity set by the optional auth middleware; anonymous requests get 0 and an empty role
func viewer(r *http.Request) (int, models.Role) {
	userID, _ := authMiddleware.GetUserID(r.Context())
	role, _ := authMiddleware.GetRole(r.Context())
	return userID, models.Role(role)
}

// optionalIntQuery parses an optional positive integer filter
func optionalIntQuery(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil, apperrors.InvalidField(key, key+" doit être un entier positif")
	}
	return &v, nil
}
