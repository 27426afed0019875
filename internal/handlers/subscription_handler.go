package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// SubscriptionService is the interface that wraps methods for subscription operations
type SubscriptionService interface {
	// Plans returns the plan catalog
	Plans() []models.Plan
	// Checkout starts a subscription, expiring the user's active one
	Checkout(ctx context.Context, userID int, req models.CheckoutRequest) (*models.Subscription, error)
	// Mine retrieves the active subscription of the user, or the most recent one
	Mine(ctx context.Context, userID int) (*models.Subscription, error)
	// Cancel cancels the active subscription of the user
	Cancel(ctx context.Context, userID int) error
	// List retrieves every subscription, optionally of one status
	List(ctx context.Context, status string) ([]models.Subscription, error)
}

// SubscriptionHandler handles HTTP requests for subscriptions
type SubscriptionHandler struct {
	handlers.BaseHandler
	service SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(svc SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all subscription handler routes
func (h *SubscriptionHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/plans", h.Plans)
		r.Group(func(r chi.Router) {
			r.Use(g.Auth)
			r.Get("/mine", h.Mine)
			r.Post("/checkout", h.Checkout)
			r.Post("/cancel", h.Cancel)
		})
	})
	r.With(g.Admin).Get("/admin/subscriptions", h.List)
}

// Plans handles GET /subscriptions/plans
// @Summary List subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.Plan
// @Router /subscriptions/plans [get]
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.Plans())
}

// Checkout handles POST /subscriptions/checkout
// @Summary Subscribe to a plan
// @Description Start a subscription; any active subscription of the user is expired first
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CheckoutRequest true "Plan"
// @Success 201 {object} models.Subscription
// @Failure 400 {object} handlers.ValidationErrorResponse "Unknown plan"
// @Failure 409 {object} map[string]string "Concurrent checkout"
// @Router /subscriptions/checkout [post]
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	sub, err := h.service.Checkout(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, sub)
}

// Mine handles GET /subscriptions/mine
// @Summary Get my subscription
// @Description Get the active subscription, or the most recent one
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 404 {object} map[string]string "No subscription"
// @Router /subscriptions/mine [get]
func (h *SubscriptionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	sub, err := h.service.Mine(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, sub)
}

// Cancel handles POST /subscriptions/cancel
// @Summary Cancel my subscription
// @Tags subscriptions
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "No active subscription"
// @Router /subscriptions/cancel [post]
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), userID); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /admin/subscriptions
// @Summary List subscriptions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status (active, expired, cancelled)"
// @Success 200 {array} models.Subscription
// @Failure 400 {object} handlers.ValidationErrorResponse "Unknown status"
// @Failure 403 {object} map[string]string "Admins only"
// @Router /admin/subscriptions [get]
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, subs)
}
