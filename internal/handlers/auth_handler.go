package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for registration and login
type AuthService interface {
	// Register creates a student account and returns it with an access token
	//
	// "ctx" is the context for the request.
	// "req" is the registration request.
	//
	// Returns a validation error for invalid input or an already used email.
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	// Login checks credentials and returns the account with an access token
	//
	// "ctx" is the context for the request.
	// "req" is the login request.
	//
	// Returns an unauthorized error for an unknown email or a wrong password.
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
}

// UserService is the interface that wraps methods for user profiles
type UserService interface {
	// Me retrieves the profile of the authenticated user
	Me(ctx context.Context, userID int) (*models.User, error)
	// ListTeachers retrieves every teacher, by name
	ListTeachers(ctx context.Context) ([]models.TeacherListItem, error)
}

// AuthHandler handles HTTP requests for authentication and user profiles
type AuthHandler struct {
	handlers.BaseHandler
	authService AuthService
	userService UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, userService UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(g.Auth).Get("/me", h.Me)
	})
	r.Get("/teachers", h.ListTeachers)
}

// Register handles POST /auth/register
// @Summary Register a student account
// @Description Create a student account and return it with an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid input or email already used"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	response, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, response)
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Check credentials and return the account with an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid input"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	response, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}

// Me handles GET /auth/me
// @Summary Get my profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	user, err := h.userService.Me(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// ListTeachers handles GET /teachers
// @Summary List teachers
// @Description List every teacher, used to start a message thread
// @Tags users
// @Produce json
// @Success 200 {array} models.TeacherListItem
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /teachers [get]
func (h *AuthHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.userService.ListTeachers(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, teachers)
}
