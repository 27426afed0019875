package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// SummaryService is the interface that wraps methods for summary operations
type SummaryService interface {
	// List retrieves summaries, newest first, optionally of one subject
	List(ctx context.Context, subject string) ([]models.Summary, error)
	// Get retrieves a summary by ID
	Get(ctx context.Context, id int) (*models.Summary, error)
	// Create stores a summary owned by the teacher
	Create(ctx context.Context, teacherID int, req models.CreateSummaryRequest) (*models.Summary, error)
	// Delete deletes a summary; only the owner or an admin may delete
	Delete(ctx context.Context, userID int, role models.Role, id int) error
	// Download counts one download and returns the file URL
	Download(ctx context.Context, id int) (string, error)
}

// SummaryHandler handles HTTP requests for summaries
type SummaryHandler struct {
	handlers.BaseHandler
	service SummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(svc SummaryService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all summary handler routes
func (h *SummaryHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/summaries", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/download", h.Download)
		r.With(g.Teacher).Post("/", h.Create)
		r.With(g.Teacher).Delete("/{id}", h.Delete)
	})
}

// List handles GET /summaries
// @Summary List summaries
// @Tags summaries
// @Produce json
// @Param subject query string false "Subject"
// @Success 200 {array} models.Summary
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /summaries [get]
func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context(), r.URL.Query().Get("subject"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, summaries)
}

// Get handles GET /summaries/{id}
// @Summary Get a summary
// @Tags summaries
// @Produce json
// @Param id path int true "Summary ID"
// @Success 200 {object} models.Summary
// @Failure 404 {object} map[string]string "Summary not found"
// @Router /summaries/{id} [get]
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", models.MessageSummaryNotFound)
	if !ok {
		return
	}

	summary, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, summary)
}

// Create handles POST /summaries
// @Summary Publish a summary
// @Tags summaries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateSummaryRequest true "Summary"
// @Success 201 {object} models.Summary
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid summary"
// @Failure 403 {object} map[string]string "Teachers and admins only"
// @Router /summaries [post]
func (h *SummaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.CreateSummaryRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	summary, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, summary)
}

// Delete handles DELETE /summaries/{id}
// @Summary Delete a summary
// @Tags summaries
// @Security BearerAuth
// @Param id path int true "Summary ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Summary not found"
// @Router /summaries/{id} [delete]
func (h *SummaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageSummaryNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, role, id); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download handles GET /summaries/{id}/download
// @Summary Download a summary
// @Description Count one download and redirect to the file
// @Tags summaries
// @Param id path int true "Summary ID"
// @Success 302 "Redirect to the file URL"
// @Failure 404 {object} map[string]string "Summary not found"
// @Router /summaries/{id}/download [get]
func (h *SummaryHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", models.MessageSummaryNotFound)
	if !ok {
		return
	}

	fileURL, err := h.service.Download(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, fileURL, http.StatusFound)
}
