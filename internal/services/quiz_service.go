package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/internal/quiz"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// QuizRepository is the interface that wraps methods for Quiz and QuizAttempt table data access
type QuizRepository interface {
	// Method Create inserts a new quiz; its ID is set on success.
	Create(ctx context.Context, quiz *models.Quiz) error
	// Method GetByID retrieves a quiz with its answers.
	//
	// If quiz with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	// Method List retrieves quizzes without questions.
	List(ctx context.Context, filter models.QuizFilter) ([]models.QuizListItem, error)
	// Method CreateAttempt stores a scored submission; its ID is set on success.
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	// Method ListAttempts retrieves a user's attempts at a quiz, newest first.
	ListAttempts(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error)
}

// LessonOwnerLookup is the interface that wraps the lesson existence check
type LessonOwnerLookup interface {
	// Method GetOwnerID retrieves the teacher ID of a lesson.
	//
	// If lesson with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned.
	GetOwnerID(ctx context.Context, id int) (int, error)
}

const (
	msgQuizPassed = "quiz.passed"
	msgQuizFailed = "quiz.failed"
)

// supportedLocales lists the activity description languages; the first one is the fallback
var supportedLocales = []language.Tag{language.French, language.English, language.Arabic}

var (
	localeMatcher = language.NewMatcher(supportedLocales)
	quizCatalog   = newQuizCatalog()
)

func newQuizCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.French))
	set := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}
	set(language.French, msgQuizPassed, "Quiz réussi : %s (%d%%)")
	set(language.French, msgQuizFailed, "Quiz échoué : %s (%d%%)")
	set(language.English, msgQuizPassed, "Quiz passed: %s (%d%%)")
	set(language.English, msgQuizFailed, "Quiz failed: %s (%d%%)")
	set(language.Arabic, msgQuizPassed, "نجاح في الاختبار: %s (%d%%)")
	set(language.Arabic, msgQuizFailed, "رسوب في الاختبار: %s (%d%%)")
	return b
}

// negotiateLocale picks the description language from the user's stored locale, then Accept-Language
func negotiateLocale(stored, acceptLanguage string) language.Tag {
	var preferred []language.Tag
	if stored != "" {
		if tag, err := language.Parse(stored); err == nil {
			preferred = append(preferred, tag)
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
		preferred = append(preferred, tags...)
	}

	_, index, confidence := localeMatcher.Match(preferred...)
	if confidence == language.No {
		return supportedLocales[0]
	}
	return supportedLocales[index]
}

// quizService implements persisted quizzes and their attempts
type quizService struct {
	repo    QuizRepository
	lessons LessonOwnerLookup
	users   UserLookup
	emitter events.Emitter
	logger  *zap.Logger
	now     func() time.Time
}

// NewQuizService creates a new quiz service
func NewQuizService(repo QuizRepository, lessons LessonOwnerLookup, users UserLookup, emitter events.Emitter, logger *zap.Logger) *quizService {
	return &quizService{
		repo:    repo,
		lessons: lessons,
		users:   users,
		emitter: emitter,
		logger:  logger,
		now:     utcNow,
	}
}

// Create validates and stores a quiz owned by teacherID
//
// Every question needs at least two options and exactly one correct option.
func (s *quizService) Create(ctx context.Context, teacherID int, req models.CreateQuizRequest) (*models.Quiz, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Subject = strings.TrimSpace(req.Subject)

	fields, _ := validation.Fields(req)
	for k, v := range quiz.CheckAuthoring(req.Questions) {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}
	if err := invalid(fields); err != nil {
		return nil, err
	}

	if req.LessonID != nil {
		_, err := s.lessons.GetOwnerID(ctx, *req.LessonID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidField("lessonId", "leçon introuvable")
		}
		if err != nil {
			return nil, err
		}
	}

	minScore := models.DefaultMinScoreToPass
	if req.MinScoreToPass != nil {
		minScore = *req.MinScoreToPass
	}

	q := &models.Quiz{
		Title:          req.Title,
		Subject:        req.Subject,
		LessonID:       req.LessonID,
		TeacherID:      teacherID,
		MinScoreToPass: minScore,
		Questions:      req.Questions,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info("quiz created", zap.Int("quizId", q.ID), zap.Int("teacherId", teacherID))
	return q, nil
}

// Get returns a quiz without its answers
func (s *quizService) Get(ctx context.Context, id int) (*models.PublicQuiz, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := q.Public()
	return &public, nil
}

// List returns quizzes, optionally of one subject or lesson
func (s *quizService) List(ctx context.Context, filter models.QuizFilter) ([]models.QuizListItem, error) {
	filter.Subject = strings.TrimSpace(filter.Subject)
	return s.repo.List(ctx, filter)
}

// Submit scores answers, stores the attempt and emits quiz_passed or quiz_failed
//
// "acceptLanguage" is the request's Accept-Language header, used when the user has no stored locale.
func (s *quizService) Submit(ctx context.Context, userID, quizID int, req models.SubmitAnswersRequest, acceptLanguage string) (*models.QuizResultResponse, error) {
	q, err := s.repo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	result := quiz.Score(q.Questions, req.Answers)
	attempt := &models.QuizAttempt{
		QuizID:     q.ID,
		UserID:     userID,
		Score:      result.Correct,
		Total:      result.Total,
		Percentage: result.Percentage(),
		Passed:     result.Passed(q.MinScoreToPass),
		CreatedAt:  s.now(),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	var storedLocale string
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user locale", zap.Int("userId", userID), zap.Error(err))
	} else {
		storedLocale = user.Locale
	}

	action, key := models.ActionQuizFailed, msgQuizFailed
	if attempt.Passed {
		action, key = models.ActionQuizPassed, msgQuizPassed
	}
	printer := message.NewPrinter(negotiateLocale(storedLocale, acceptLanguage), message.Catalog(quizCatalog))

	activity := models.Activity{
		UserID:      userID,
		ActionType:  action,
		Description: printer.Sprintf(key, q.Title, attempt.Percentage),
		Link:        fmt.Sprintf("/quizzes/%d", q.ID),
	}
	if user != nil {
		activity.UserName = user.Name
		activity.Role = user.Role
	}
	s.emitter.Emit(ctx, activity)

	return &models.QuizResultResponse{
		AttemptID:      attempt.ID,
		Score:          result.Correct,
		Total:          result.Total,
		Display:        result.String(),
		Percentage:     attempt.Percentage,
		MinScoreToPass: q.MinScoreToPass,
		Passed:         attempt.Passed,
	}, nil
}

// MyAttempts returns the user's attempts at a quiz
func (s *quizService) MyAttempts(ctx context.Context, userID, quizID int) ([]models.QuizAttempt, error) {
	if _, err := s.repo.GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.repo.ListAttempts(ctx, quizID, userID)
}
