package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/internal/quiz"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
)

// Lesson list pagination
const (
	DefaultLessonCount = 20
	MaxLessonCount     = 100
)

// LessonRepository is the interface that wraps methods for Lesson and LessonBlock table data access
type LessonRepository interface {
	// Method List retrieves lessons without content, newest first.
	//
	// "filter" parameter holds the optional filters and the 1-based page.
	List(ctx context.Context, filter models.LessonFilter) ([]models.LessonListItem, error)
	// Method GetByID retrieves a lesson with its content blocks in display order.
	//
	// If lesson with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
	// Method Create inserts a lesson and its blocks in one transaction; block orders become 1..N.
	Create(ctx context.Context, lesson *models.Lesson) error
	// Method Update replaces the fields and the content of a lesson in one transaction.
	//
	// Please reference GetByID method for the error returned for unknown lessons.
	Update(ctx context.Context, lesson *models.Lesson) error
	// Method Delete deletes a lesson with its blocks and completions.
	Delete(ctx context.Context, id int) error
	// Method InsertBlock inserts a block at a 1-based position and returns the order it got.
	//
	// "position" parameter out of 1..N (including 0) appends the block.
	// "updatedAt" parameter becomes the lesson's updatedAt.
	InsertBlock(ctx context.Context, lessonID, position int, block models.Block, updatedAt time.Time) (int, error)
	// Method DeleteBlock deletes the block at order and renumbers the rest 1..N.
	//
	// An order outside 1..N returns an error wrapping apperrors.ErrNotFound; deleting the
	// only block returns an error wrapping apperrors.ErrValidation. Both checks run under the lesson lock.
	DeleteBlock(ctx context.Context, lessonID, order int, updatedAt time.Time) error
	// Method GetBlock retrieves the block at order in a lesson.
	GetBlock(ctx context.Context, lessonID, order int) (*models.ContentBlock, error)
	// Method GetOwnerID retrieves the teacher ID of a lesson.
	GetOwnerID(ctx context.Context, id int) (int, error)
	// Method MarkCompleted records a completion and reports whether it is new.
	MarkCompleted(ctx context.Context, userID, lessonID int, completedAt time.Time) (bool, error)
}

// LessonRenderer is the interface that wraps rendering of lesson content into view models
type LessonRenderer interface {
	// Method RenderLesson renders every block of a lesson; individual block failures become block states.
	RenderLesson(ctx context.Context, lesson *models.Lesson) *models.RenderedLesson
}

// lessonService implements lesson management and delivery
type lessonService struct {
	repo     LessonRepository
	renderer LessonRenderer
	emitter  events.Emitter
	logger   *zap.Logger
	now      func() time.Time
}

// NewLessonService creates a new lesson service
func NewLessonService(repo LessonRepository, renderer LessonRenderer, emitter events.Emitter, logger *zap.Logger) *lessonService {
	return &lessonService{
		repo:     repo,
		renderer: renderer,
		emitter:  emitter,
		logger:   logger,
		now:      utcNow,
	}
}

// List returns a page of lessons; count defaults to 20 and is capped at 100
//
// Viewers other than admins only see published lessons and their own. viewerID is 0 for anonymous callers.
func (s *lessonService) List(ctx context.Context, viewerID int, role models.Role, filter models.LessonFilter) ([]models.LessonListItem, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Count = clampLimit(filter.Count, DefaultLessonCount, MaxLessonCount)
	if filter.Status != nil {
		switch *filter.Status {
		case models.LessonStatusDraft, models.LessonStatusPublished, models.LessonStatusArchived:
		default:
			return nil, apperrors.InvalidField("status", "statut inconnu")
		}
	}
	if role != models.RoleAdmin {
		filter.PublishedOnly = true
		filter.ViewerID = viewerID
	}
	return s.repo.List(ctx, filter)
}

// Get returns a lesson with its content
//
// Draft and archived lessons are reported as not found to anyone but their owner and admins.
func (s *lessonService) Get(ctx context.Context, viewerID int, role models.Role, id int) (*models.Lesson, error) {
	return s.visibleLesson(ctx, viewerID, role, id)
}

// Render returns the lesson header and the view model of every block
func (s *lessonService) Render(ctx context.Context, viewerID int, role models.Role, id int) (*models.RenderedLesson, error) {
	lesson, err := s.visibleLesson(ctx, viewerID, role, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderLesson(ctx, lesson), nil
}

func (s *lessonService) visibleLesson(ctx context.Context, viewerID int, role models.Role, id int) (*models.Lesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Status != models.LessonStatusPublished && !canManage(viewerID, role, lesson.TeacherID) {
		return nil, apperrors.NotFound(models.MessageLessonNotFound)
	}
	return lesson, nil
}

// Create validates and stores a new lesson owned by teacherID
func (s *lessonService) Create(ctx context.Context, teacherID int, req models.LessonRequest) (*models.Lesson, error) {
	if err := validateLessonRequest(&req); err != nil {
		return nil, err
	}

	now := s.now()
	lesson := lessonFromRequest(req)
	lesson.TeacherID = teacherID
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}

	s.logger.Info("lesson created", zap.Int("lessonId", lesson.ID), zap.Int("teacherId", teacherID))
	s.emitter.Emit(ctx, models.Activity{
		UserID:      teacherID,
		ActionType:  models.ActionLessonCreated,
		Description: lesson.Title,
		Link:        lessonLink(lesson.ID),
	})

	return lesson, nil
}

// Update replaces the fields and content of a lesson
//
// Only the owning teacher or an admin may update a lesson.
func (s *lessonService) Update(ctx context.Context, userID int, role models.Role, id int, req models.LessonRequest) (*models.Lesson, error) {
	if err := validateLessonRequest(&req); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, role, id); err != nil {
		return nil, err
	}

	lesson := lessonFromRequest(req)
	lesson.ID = id
	lesson.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, models.Activity{
		UserID:      userID,
		ActionType:  models.ActionLessonUpdated,
		Description: lesson.Title,
		Link:        lessonLink(id),
	})

	return s.repo.GetByID(ctx, id)
}

// Delete removes a lesson; only the owning teacher or an admin may do it
func (s *lessonService) Delete(ctx context.Context, userID int, role models.Role, id int) error {
	if err := s.authorize(ctx, userID, role, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.emitter.Emit(ctx, models.Activity{
		UserID:      userID,
		ActionType:  models.ActionLessonDeleted,
		Description: fmt.Sprintf("Leçon #%d supprimée", id),
	})
	return nil
}

// AddBlock inserts a block into a lesson and returns it with its assigned order
func (s *lessonService) AddBlock(ctx context.Context, userID int, role models.Role, lessonID int, req models.AddBlockRequest) (*models.ContentBlock, error) {
	fields := map[string]string{}
	validateBlock(fields, "block.", req.Block)
	if req.Position != nil && *req.Position < 0 {
		fields["position"] = "position doit être positive"
	}
	if err := invalid(fields); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, role, lessonID); err != nil {
		return nil, err
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	}

	order, err := s.repo.InsertBlock(ctx, lessonID, position, req.Block.Block, s.now())
	if err != nil {
		return nil, err
	}

	return &models.ContentBlock{Order: order, Block: req.Block.Block}, nil
}

// RemoveBlock deletes a block from a lesson; the last block of a lesson cannot be removed
func (s *lessonService) RemoveBlock(ctx context.Context, userID int, role models.Role, lessonID, order int) error {
	if err := s.authorize(ctx, userID, role, lessonID); err != nil {
		return err
	}

	return s.repo.DeleteBlock(ctx, lessonID, order, s.now())
}

// SubmitBlockQuiz scores answers to a quiz block of a lesson
//
// Nothing is stored and no activity is emitted; the result is only traced at debug level.
func (s *lessonService) SubmitBlockQuiz(ctx context.Context, userID, lessonID, order int, req models.SubmitAnswersRequest) (*models.ScoreResponse, error) {
	cb, err := s.repo.GetBlock(ctx, lessonID, order)
	if err != nil {
		return nil, err
	}

	block, ok := cb.Block.(models.QuizBlock)
	if !ok {
		return nil, apperrors.InvalidField("order", "ce bloc n'est pas un quiz")
	}

	result := quiz.Score(block.Data.Questions, req.Answers)
	s.logger.Debug("lesson quiz submitted",
		zap.Int("userId", userID),
		zap.Int("lessonId", lessonID),
		zap.Int("order", order),
		zap.Stringer("score", result),
	)

	response := result.Response()
	return &response, nil
}

// Complete records that a user finished a lesson
//
// Completing twice is not an error; the activity is only emitted the first time.
func (s *lessonService) Complete(ctx context.Context, userID, lessonID int) (*models.LessonCompletion, error) {
	if _, err := s.repo.GetOwnerID(ctx, lessonID); err != nil {
		return nil, err
	}

	completion := &models.LessonCompletion{UserID: userID, LessonID: lessonID, CompletedAt: s.now()}
	created, err := s.repo.MarkCompleted(ctx, userID, lessonID, completion.CompletedAt)
	if err != nil {
		return nil, err
	}

	if created {
		s.emitter.Emit(ctx, models.Activity{
			UserID:      userID,
			ActionType:  models.ActionLessonCompleted,
			Description: fmt.Sprintf("Leçon #%d terminée", lessonID),
			Link:        lessonLink(lessonID),
		})
	}

	return completion, nil
}

// authorize checks that the user owns the lesson or is an admin
func (s *lessonService) authorize(ctx context.Context, userID int, role models.Role, lessonID int) error {
	ownerID, err := s.repo.GetOwnerID(ctx, lessonID)
	if err != nil {
		return err
	}
	if !canManage(userID, role, ownerID) {
		return apperrors.Forbidden("Vous n'êtes pas l'auteur de cette leçon")
	}
	return nil
}

// validateLessonRequest trims text fields and checks the header and every block
func validateLessonRequest(req *models.LessonRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Subject = strings.TrimSpace(req.Subject)

	fields, _ := validation.Fields(req)
	for i, cb := range req.Content {
		validateBlock(fields, fmt.Sprintf("content[%d].", i), cb)
	}
	if req.IsLive && req.StartTime == nil {
		fields["startTime"] = "startTime est obligatoire pour une leçon en direct"
	}

	return invalid(fields)
}

// validateBlock adds the messages of one block to fields, keys prefixed with prefix
func validateBlock(fields map[string]string, prefix string, cb models.ContentBlock) {
	if cb.Block == nil {
		fields[prefix+"type"] = "type est obligatoire"
		return
	}

	blockFields, _ := validation.Fields(cb.Block)
	validation.Prefixed(fields, prefix, blockFields)

	if qb, ok := cb.Block.(models.QuizBlock); ok {
		validation.Prefixed(fields, prefix+"data.", quiz.CheckAuthoring(qb.Data.Questions))
	}
}

func lessonFromRequest(req models.LessonRequest) *models.Lesson {
	status := req.Status
	if status == "" {
		status = models.LessonStatusPublished
	}
	startTime := req.StartTime
	if startTime != nil {
		utc := startTime.UTC()
		startTime = &utc
	}
	return &models.Lesson{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		IsLive:      req.IsLive,
		StartTime:   startTime,
		Duration:    req.Duration,
		Status:      status,
		Content:     req.Content,
	}
}

func lessonLink(id int) string {
	return fmt.Sprintf("/lessons/%d", id)
}
