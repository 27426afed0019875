package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// ActivityService is the interface that wraps methods for reading the activity log
type ActivityService interface {
	// ListMine retrieves the latest activities of the user; limit defaults to 10
	ListMine(ctx context.Context, userID, limit int) ([]models.Activity, error)
	// ListAll retrieves the latest activities of everyone, or of one user; limit defaults to 50
	ListAll(ctx context.Context, userID *int, limit int) ([]models.Activity, error)
}

// ActivityHandler handles HTTP requests for the activity log
type ActivityHandler struct {
	handlers.BaseHandler
	service ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(svc ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all activity handler routes
func (h *ActivityHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.With(g.Auth).Get("/activities/mine", h.ListMine)
	r.With(g.Admin).Get("/admin/activities", h.ListAll)
}

// ListMine handles GET /activities/mine
// @Summary List my recent activity
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries (default: 10, max: 100)"
// @Success 200 {array} models.Activity
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /activities/mine [get]
func (h *ActivityHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	activities, err := h.service.ListMine(r.Context(), userID, handlers.QueryInt(r, "limit", 0, 0))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, activities)
}

// ListAll handles GET /admin/activities
// @Summary List recent activity
// @Description Latest activity of every user, or of one user when userId is set
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId query int false "User ID"
// @Param limit query int false "Maximum entries (default: 50, max: 100)"
// @Success 200 {array} models.Activity
// @Failure 403 {object} map[string]string "Admins only"
// @Router /admin/activities [get]
func (h *ActivityHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, err := optionalIntQuery(r, "userId")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	activities, err := h.service.ListAll(r.Context(), userID, handlers.QueryInt(r, "limit", 0, 0))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, activities)
}
