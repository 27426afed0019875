package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// TicketService is the interface that wraps methods for support ticket operations
type TicketService interface {
	// Create opens a ticket for the user
	Create(ctx context.Context, userID int, req models.CreateTicketRequest) (*models.Ticket, error)
	// Mine retrieves the tickets opened by the user
	Mine(ctx context.Context, userID int) ([]models.Ticket, error)
	// List retrieves every ticket, optionally of one status
	List(ctx context.Context, status string) ([]models.Ticket, error)
	// Reply answers a ticket and notifies its owner; closed tickets are a conflict
	Reply(ctx context.Context, id int, req models.ReplyTicketRequest) (*models.Ticket, error)
	// Close closes a ticket; only the owner or an admin may close
	Close(ctx context.Context, userID int, role models.Role, id int) (*models.Ticket, error)
}

// TicketHandler handles HTTP requests for support tickets
type TicketHandler struct {
	handlers.BaseHandler
	service TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(svc TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all ticket handler routes
func (h *TicketHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/tickets", func(r chi.Router) {
		r.Use(g.Auth)
		r.Post("/", h.Create)
		r.Get("/mine", h.Mine)
		r.Put("/{id}/close", h.Close)
	})
	r.With(g.Admin).Get("/admin/tickets", h.List)
	r.With(g.Admin).Put("/admin/tickets/{id}/reply", h.Reply)
}

// Create handles POST /tickets
// @Summary Open a support ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTicketRequest true "Ticket"
// @Success 201 {object} models.Ticket
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid ticket"
// @Router /tickets [post]
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.CreateTicketRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	ticket, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, ticket)
}

// Mine handles GET /tickets/mine
// @Summary List my tickets
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Ticket
// @Router /tickets/mine [get]
func (h *TicketHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	tickets, err := h.service.Mine(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, tickets)
}

// Close handles PUT /tickets/{id}/close
// @Summary Close a ticket
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} models.Ticket
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Ticket not found"
// @Router /tickets/{id}/close [put]
func (h *TicketHandler) Close(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageTicketNotFound)
	if !ok {
		return
	}

	ticket, err := h.service.Close(r.Context(), userID, role, id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, ticket)
}

// List handles GET /admin/tickets
// @Summary List tickets
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status (open, answered, closed)"
// @Success 200 {array} models.Ticket
// @Failure 400 {object} handlers.ValidationErrorResponse "Unknown status"
// @Router /admin/tickets [get]
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, tickets)
}

// Reply handles PUT /admin/tickets/{id}/reply
// @Summary Answer a ticket
// @Description Store the reply, mark the ticket answered and notify its owner
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param request body models.ReplyTicketRequest true "Reply"
// @Success 200 {object} models.Ticket
// @Failure 404 {object} map[string]string "Ticket not found"
// @Failure 409 {object} map[string]string "Ticket closed"
// @Router /admin/tickets/{id}/reply [put]
func (h *TicketHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", models.MessageTicketNotFound)
	if !ok {
		return
	}

	var req models.ReplyTicketRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	ticket, err := h.service.Reply(r.Context(), id, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, ticket)
}
