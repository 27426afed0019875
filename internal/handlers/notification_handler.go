package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// NotificationService is the interface that wraps methods for notification operations
type NotificationService interface {
	// List retrieves the user's notifications, newest first; limit defaults to 50
	List(ctx context.Context, userID, limit int) ([]models.Notification, error)
	// UnreadCount returns the number of unread notifications of the user
	UnreadCount(ctx context.Context, userID int) (*models.UnreadCountResponse, error)
	// MarkRead marks one of the user's notifications as read
	//
	// Notifications of other users are reported as not found.
	MarkRead(ctx context.Context, userID, id int) error
	// MarkAllRead marks every notification of the user as read
	MarkAllRead(ctx context.Context, userID int) error
	// Broadcast sends a notification to every user of a role or to one user and returns the recipient count
	Broadcast(ctx context.Context, req models.BroadcastRequest) (int, error)
}

// BroadcastResponse is returned after an admin broadcast
type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	handlers.BaseHandler
	service NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all notification handler routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(g.Auth)
		r.Get("/", h.List)
		r.Get("/unread-count", h.UnreadCount)
		r.Put("/read-all", h.MarkAllRead)
		r.Put("/{id}/read", h.MarkRead)
	})
	r.With(g.Admin).Post("/admin/notifications", h.Broadcast)
}

// List handles GET /notifications
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries (default: 50, max: 200)"
// @Success 200 {array} models.Notification
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	notifications, err := h.service.List(r.Context(), userID, handlers.QueryInt(r, "limit", 0, 0))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, notifications)
}

// UnreadCount handles GET /notifications/unread-count
// @Summary Count my unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UnreadCountResponse
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// MarkRead handles PUT /notifications/{id}/read
// @Summary Mark a notification as read
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Notification not found"
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageNotificationNotFound)
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), userID, id); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles PUT /notifications/read-all
// @Summary Mark all my notifications as read
// @Tags notifications
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Broadcast handles POST /admin/notifications
// @Summary Broadcast a notification
// @Description Send a notification to every user of a role or to a single user, optionally by email
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BroadcastRequest true "Notification"
// @Success 201 {object} BroadcastResponse
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid notification"
// @Failure 403 {object} map[string]string "Admins only"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/notifications [post]
func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req models.BroadcastRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	recipients, err := h.service.Broadcast(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, BroadcastResponse{Recipients: recipients})
}
