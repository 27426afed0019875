package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/handlers"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for persisted quiz operations
type QuizService interface {
	// Create validates and stores a quiz owned by the teacher
	//
	// Every question needs at least two options and exactly one correct option.
	Create(ctx context.Context, teacherID int, req models.CreateQuizRequest) (*models.Quiz, error)
	// Get retrieves a quiz with its answers stripped
	Get(ctx context.Context, id int) (*models.PublicQuiz, error)
	// List retrieves quizzes, optionally of one subject or lesson
	List(ctx context.Context, filter models.QuizFilter) ([]models.QuizListItem, error)
	// Submit scores answers, stores the attempt and records quiz_passed or quiz_failed
	//
	// "acceptLanguage" picks the activity language when the user has no stored locale.
	Submit(ctx context.Context, userID, quizID int, req models.SubmitAnswersRequest, acceptLanguage string) (*models.QuizResultResponse, error)
	// MyAttempts retrieves the user's attempts at a quiz, newest first
	MyAttempts(ctx context.Context, userID, quizID int) ([]models.QuizAttempt, error)
}

// QuizHandler handles HTTP requests for persisted quizzes
type QuizHandler struct {
	handlers.BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, g Guards) {
	r.Route("/quizzes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.With(g.Teacher).Post("/", h.Create)
		r.With(g.Auth).Post("/{id}/submit", h.Submit)
		r.With(g.Auth).Get("/{id}/attempts/mine", h.MyAttempts)
	})
}

// List handles GET /quizzes
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param subject query string false "Subject"
// @Param lessonId query int false "Lesson ID"
// @Success 200 {array} models.QuizListItem
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid filter"
// @Router /quizzes [get]
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	lessonID, err := optionalIntQuery(r, "lessonId")
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	quizzes, err := h.service.List(r.Context(), models.QuizFilter{
		Subject:  r.URL.Query().Get("subject"),
		LessonID: lessonID,
	})
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, quizzes)
}

// Get handles GET /quizzes/{id}
// @Summary Get a quiz
// @Description Get a quiz without its correct answers
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.PublicQuiz
// @Failure 404 {object} map[string]string "Quiz not found"
// @Router /quizzes/{id} [get]
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", models.MessageQuizNotFound)
	if !ok {
		return
	}

	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, q)
}

// Create handles POST /quizzes
// @Summary Create a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateQuizRequest true "Quiz"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} handlers.ValidationErrorResponse "Invalid quiz"
// @Failure 403 {object} map[string]string "Teachers and admins only"
// @Router /quizzes [post]
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.CreateQuizRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	q, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, q)
}

// Submit handles POST /quizzes/{id}/submit
// @Summary Submit a quiz
// @Description Score the answers, store the attempt and report whether the quiz is passed
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param Accept-Language header string false "Preferred language of the activity entry"
// @Param request body models.SubmitAnswersRequest true "Selected option index per question index"
// @Success 200 {object} models.QuizResultResponse
// @Failure 404 {object} map[string]string "Quiz not found"
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageQuizNotFound)
	if !ok {
		return
	}

	var req models.SubmitAnswersRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Submit(r.Context(), userID, id, req, r.Header.Get("Accept-Language"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// MyAttempts handles GET /quizzes/{id}/attempts/mine
// @Summary List my attempts at a quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {array} models.QuizAttempt
// @Failure 404 {object} map[string]string "Quiz not found"
// @Router /quizzes/{id}/attempts/mine [get]
func (h *QuizHandler) MyAttempts(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(&h.BaseHandler, w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", models.MessageQuizNotFound)
	if !ok {
		return
	}

	attempts, err := h.service.MyAttempts(r.Context(), userID, id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, attempts)
}
