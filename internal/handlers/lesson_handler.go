package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// LessonService is the interface that wraps methods for lesson operations
type LessonService interface {
	// List retrieves a page of lessons without content
	//
	// "ctx" is the context for the request.
	// "viewerID" and "role" identify the caller, 0 and "" when anonymous; only admins see other users' drafts.
	// "filter" holds the optional subject, teacher, status and live filters with page and count.
	//
	// Returns a validation error for an unknown status.
	List(ctx context.Context, viewerID int, role models.Role, filter models.LessonFilter) ([]models.LessonListItem, error)
	// Get retrieves a lesson with its ordered content; unpublished lessons are only visible to their owner and admins
	Get(ctx context.Context, viewerID int, role models.Role, id int) (*models.Lesson, error)
	// Render retrieves a lesson header with the view of every block
	Render(ctx context.Context, viewerID int, role models.Role, id int) (*models.RenderedLesson, error)
	// Create validates and stores a lesson owned by the teacher
	Create(ctx context.Context, teacherID int, req models.LessonRequest) (*models.Lesson, error)
	// Update replaces the fields and content of a lesson
	//
	// "userID" and "role" identify the caller; only the owner or an admin may update.
	Update(ctx context.Context, userID int, role models.Role, id int, req models.LessonRequest) (*models.Lesson, error)
	// Delete deletes a lesson; only the owner or an admin may delete
	Delete(ctx context.Context, userID int, role models.Role, id int) error
	// AddBlock inserts a block at a 1-based position, or appends it
	AddBlock(ctx context.Context, userID int, role models.Role, lessonID int, req models.AddBlockRequest) (*models.ContentBlock, error)
	// RemoveBlock deletes the block at order and renumbers the rest
	RemoveBlock(ctx context.Context, userID int, role models.Role, lessonID, order int) error
	// SubmitBlockQuiz scores answers to a quiz block without storing them
	SubmitBlockQuiz(ctx context.Context, userID, lessonID, order int, req models.SubmitAnswersRequest) (*models.ScoreResponse, error)
	// Complete records that the user finished the lesson
	Complete(ctx context.Context, userID, lessonID int) (*models.LessonCompletion, error)
}

// LessonHandler handles HTTP requests for lessons and their content blocks
type LessonHandler struct {
	handlers.BaseHandler
	service LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(svc LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/lessons", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(g.Optional)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Get("/{id}/render", h.Render)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Teacher)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/blocks", h.AddBlock)
			r.Delete("/{id}/blocks/{order}", h.RemoveBlock)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Auth)
			r.Post("/{id}/blocks/{order}/submit", h.SubmitBlockQuiz)
			r.Post("/{id}/complete", h.Complete)
		})
	})
}

// List handles GET /lessons
// @Summary List lessons
// @Description Get a page of lessons, newest first, without their content. Anonymous callers and students see published lessons only; teachers also see their own.
// @Tags lessons
// @Produce json
// @Param subject query string false "Subject"
// @Param teacherId query int false "Teacher ID"
// @Param status query string false "Status (draft, published, archived)"
// @Param live query bool false "Live lessons only (true) or recorded only (false)"
// @Param page query int false "Page number (default: 1)"
// @Param count query int false "Items per page (default: 20, max: 100)"
// @Success 200 {array} models.LessonListItem
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid filter"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons [get]
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.LessonFilter{
		Subject: query.Get("subject"),
		Page:    handlers.QueryInt(r, "page", 1, 0),
		Count:   handlers.QueryInt(r, "count", 0, 0),
	}

	teacherID, err := optionalIntQuery(r, "teacherId")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}
	filter.TeacherID = teacherID

	if status := query.Get("status"); status != "" {
		s := models.LessonStatus(status)
		filter.Status = &s
	}
	if liveStr := query.Get("live"); liveStr != "" {
		live, err := strconv.ParseBool(liveStr)
		if err != nil {
			h.RespondServiceError(w, r, apperrors.InvalidField("live", "live doit valoir true ou false"))
			return
		}
		filter.IsLive = &live
	}

	viewerID, role := viewer(r)
	lessons, err := h.service.List(r.Context(), viewerID, role, filter)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// Get handles GET /lessons/{id}
// @Summary Get a lesson
// @Description Get a lesson with its content blocks in display order
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.Lesson
// @Failure 404 {object} map[string]string "Lesson not found or malformed ID"
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}

	viewerID, role := viewer(r)
	lesson, err := h.service.Get(r.Context(), viewerID, role, id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// Render handles GET /lessons/{id}/render
// @Summary Render a lesson
// @Description Get a lesson header with the view model of every block; a broken block never fails the lesson
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.RenderedLesson
// @Failure 404 {object} map[string]string "Lesson not found or malformed ID"
// @Router /lessons/{id}/render [get]
func (h *LessonHandler) Render(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}

	viewerID, role := viewer(r)
	rendered, err := h.service.Render(r.Context(), viewerID, role, id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, rendered)
}

// Create handles POST /lessons
// @Summary Create a lesson
// @Description Create a lesson owned by the authenticated teacher
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LessonRequest true "Lesson"
// @Success 201 {object} models.Lesson
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid lesson"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Teachers and admins only"
// @Router /lessons [post]
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.LessonRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	lesson, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, lesson)
}

// Update handles PUT /lessons/{id}
// @Summary Replace a lesson
// @Description Replace the fields and the content of a lesson; owner or admin only
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body models.LessonRequest true "Lesson"
// @Success 200 {object} models.Lesson
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid lesson"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Lesson not found or malformed ID"
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}

	var req models.LessonRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	lesson, err := h.service.Update(r.Context(), userID, role, id, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// Delete handles DELETE /lessons/{id}
// @Summary Delete a lesson
// @Tags lessons
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Lesson not found or malformed ID"
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, role, id); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddBlock handles POST /lessons/{id}/blocks
// @Summary Add a content block
// @Description Insert a block at a 1-based position, or append it when the position is absent or past the end
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param request body models.AddBlockRequest true "Block"
// @Success 201 {object} models.ContentBlock
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid block"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Lesson not found or malformed ID"
// @Router /lessons/{id}/blocks [post]
func (h *LessonHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}

	var req models.AddBlockRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	block, err := h.service.AddBlock(r.Context(), userID, role, id, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, block)
}

// RemoveBlock handles DELETE /lessons/{id}/blocks/{order}
// @Summary Remove a content block
// @Description Remove the block at order; remaining blocks are renumbered 1..N
// @Tags lessons
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param order path int true "Block order"
// @Success 204 "No Content"
// @Failure 400 {object} handlers.ValidationErrorResponse "Last block of the lesson"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Lesson or block not found"
// @Router /lessons/{id}/blocks/{order} [delete]
func (h *LessonHandler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}
	order, ok := h.PathID(w, r, "order", models.MessageBlockNotFound)
	if !ok {
		return
	}

	if err := h.service.RemoveBlock(r.Context(), userID, role, id, order); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitBlockQuiz handles POST /lessons/{id}/blocks/{order}/submit
// @Summary Submit answers to a lesson quiz block
// @Description Score answers to an inline quiz; nothing is stored
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param order path int true "Block order"
// @Param request body models.SubmitAnswersRequest true "Selected option index per question index"
// @Success 200 {object} models.ScoreResponse
// @Failure 400 {object} handlers.ValidationErrorResponse "Block is not a quiz"
// @Failure 404 {object} map[string]string "Lesson or block not found"
// @Router /lessons/{id}/blocks/{order}/submit [post]
func (h *LessonHandler) SubmitBlockQuiz(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}
	order, ok := h.PathID(w, r, "order", models.MessageBlockNotFound)
	if !ok {
		return
	}

	var req models.SubmitAnswersRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	score, err := h.service.SubmitBlockQuiz(r.Context(), userID, id, order, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, score)
}

// Complete handles POST /lessons/{id}/complete
// @Summary Mark a lesson as completed
// @Description Record that the authenticated user finished the lesson; repeating it is harmless
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} models.LessonCompletion
// @Failure 404 {object} map[string]string "Lesson not found or malformed ID"
// @Router /lessons/{id}/complete [post]
func (h *LessonHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageLessonNotFound)
	if !ok {
		return
	}

	completion, err := h.service.Complete(r.Context(), userID, id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, completion)
}
