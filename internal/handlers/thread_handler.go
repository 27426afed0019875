package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// ThreadService is the interface that wraps methods for student-teacher conversations
type ThreadService interface {
	// Create starts a thread with a teacher and its first message
	Create(ctx context.Context, studentID int, req models.CreateThreadRequest) (*models.Thread, error)
	// List retrieves the threads of the user, as student or as teacher
	List(ctx context.Context, userID int) ([]models.Thread, error)
	// Messages retrieves the messages of a thread; participants only
	Messages(ctx context.Context, userID, threadID int) ([]models.Message, error)
	// Send appends a message to a thread; participants only
	Send(ctx context.Context, userID, threadID int, req models.SendMessageRequest) (*models.Message, error)
}

// ThreadHandler handles HTTP requests for message threads
type ThreadHandler struct {
	handlers.BaseHandler
	service ThreadService
}

// NewThreadHandler creates a new thread handler
func NewThreadHandler(svc ThreadService, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all thread handler routes
func (h *ThreadHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/threads", func(r chi.Router) {
		r.With(g.Student).Post("/", h.Create)
		r.Group(func(r chi.Router) {
			r.Use(g.Auth)
			r.Get("/", h.List)
			r.Get("/{id}/messages", h.Messages)
			r.Post("/{id}/messages", h.Send)
		})
	})
}

// Create handles POST /threads
// @Summary Start a conversation with a teacher
// @Tags threads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateThreadRequest true "Thread"
// @Success 201 {object} models.Thread
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid thread or unknown teacher"
// @Failure 403 {object} map[string]string "Students only"
// @Router /threads [post]
func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.CreateThreadRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	thread, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, thread)
}

// List handles GET /threads
// @Summary List my conversations
// @Tags threads
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Thread
// @Router /threads [get]
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	threads, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, threads)
}

// Messages handles GET /threads/{id}/messages
// @Summary List the messages of a conversation
// @Tags threads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {array} models.Message
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 404 {object} map[string]string "Thread not found"
// @Router /threads/{id}/messages [get]
func (h *ThreadHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageThreadNotFound)
	if !ok {
		return
	}

	messages, err := h.service.Messages(r.Context(), userID, id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, messages)
}

// Send handles POST /threads/{id}/messages
// @Summary Send a message
// @Tags threads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param request body models.SendMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 404 {object} map[string]string "Thread not found"
// @Router /threads/{id}/messages [post]
func (h *ThreadHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageThreadNotFound)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	message, err := h.service.Send(r.Context(), userID, id, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, message)
}
