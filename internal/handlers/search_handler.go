package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// SearchService is the interface that wraps the cross-entity search
type SearchService interface {
	// Search looks q up in lessons, summaries, quizzes and teachers
	//
	// Returns a validation error for a blank or too long query.
	Search(ctx context.Context, q string) (*models.SearchResponse, error)
}

// SearchHandler handles HTTP requests for search
type SearchHandler struct {
	handlers.BaseHandler
	service SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(svc SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all search handler routes
func (h *SearchHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Get("/search", h.Search)
}

// Search handles GET /search
// @Summary Search content
// @Description Case-insensitive substring search over lessons, summaries, quizzes and teachers; at most 5 results per type
// @Tags search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} handlers.ValidationErrorResponse "Blank or too long query"
// @Router /search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, response)
}
