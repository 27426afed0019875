package services

import (
	"context"
	"errors"
	"testing"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// mockQuizRepository is a mock implementation of QuizRepository
type mockQuizRepository struct {
	quizzes  map[int]*models.Quiz
	created  []*models.Quiz
	attempts []*models.QuizAttempt
	err      error
}

func newMockQuizRepository(quizzes ...*models.Quiz) *mockQuizRepository {
	m := &mockQuizRepository{quizzes: map[int]*models.Quiz{}}
	for _, q := range quizzes {
		m.quizzes[q.ID] = q
	}
	return m
}

func (m *mockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if m.err != nil {
		return m.err
	}
	quiz.ID = 31
	m.created = append(m.created, quiz)
	return nil
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	if q, ok := m.quizzes[id]; ok {
		return q, nil
	}
	return nil, apperrors.NotFound("Quiz non trouvé")
}

func (m *mockQuizRepository) List(ctx context.Context, filter models.QuizFilter) ([]models.QuizListItem, error) {
	return nil, m.err
}

func (m *mockQuizRepository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if m.err != nil {
		return m.err
	}
	attempt.ID = len(m.attempts) + 1
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *mockQuizRepository) ListAttempts(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error) {
	out := make([]models.QuizAttempt, 0, len(m.attempts))
	for _, a := range m.attempts {
		if a.QuizID == quizID && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, m.err
}

// mockLessonOwners is a mock implementation of LessonOwnerLookup
type mockLessonOwners struct {
	owners map[int]int
	err    error
}

func (m *mockLessonOwners) GetOwnerID(ctx context.Context, id int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if owner, ok := m.owners[id]; ok {
		return owner, nil
	}
	return 0, apperrors.NotFound("Leçon non trouvée")
}

func twoQuestions() []models.Question {
	return []models.Question{
		{QuestionText: "2+2 ?", Options: []models.Option{{Text: "3"}, {Text: "4", IsCorrect: true}}},
		{QuestionText: "3×3 ?", Options: []models.Option{{Text: "9", IsCorrect: true}, {Text: "6"}}},
	}
}

func newTestQuizService(repo *mockQuizRepository, users *mockUserRepository, emitter *mockEmitter) *quizService {
	svc := NewQuizService(repo, &mockLessonOwners{owners: map[int]int{5: 2}}, users, emitter, zap.NewNop())
	svc.now = fixedClock
	return svc
}

func intPtr(v int) *int { return &v }

func TestQuizService_Create(t *testing.T) {
	tests := []struct {
		name             string
		req              models.CreateQuizRequest
		expectedMinScore int
		expectedFields   []string
	}{
		{
			name:             "default pass threshold",
			req:              models.CreateQuizRequest{Title: "Contrôle", Subject: "Maths", Questions: twoQuestions()},
			expectedMinScore: models.DefaultMinScoreToPass,
		},
		{
			name:             "attached to a lesson with threshold",
			req:              models.CreateQuizRequest{Title: "Contrôle", Subject: "Maths", LessonID: intPtr(5), MinScoreToPass: intPtr(80), Questions: twoQuestions()},
			expectedMinScore: 80,
		},
		{
			name:           "unknown lesson",
			req:            models.CreateQuizRequest{Title: "Contrôle", Subject: "Maths", LessonID: intPtr(6), Questions: twoQuestions()},
			expectedFields: []string{"lessonId"},
		},
		{
			name:           "no questions",
			req:            models.CreateQuizRequest{Title: "Contrôle", Subject: "Maths"},
			expectedFields: []string{"questions"},
		},
		{
			name: "no correct option",
			req: models.CreateQuizRequest{Title: "Contrôle", Subject: "Maths", Questions: []models.Question{
				{QuestionText: "?", Options: []models.Option{{Text: "a"}, {Text: "b"}}},
			}},
			expectedFields: []string{"questions[0].options"},
		},
		{
			name:           "threshold out of range",
			req:            models.CreateQuizRequest{Title: "Contrôle", Subject: "Maths", MinScoreToPass: intPtr(120), Questions: twoQuestions()},
			expectedFields: []string{"minScoreToPass"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockQuizRepository()
			svc := newTestQuizService(repo, newMockUserRepository(), &mockEmitter{})

			q, err := svc.Create(context.Background(), 2, tt.req)

			if len(tt.expectedFields) > 0 {
				var vErr *apperrors.ValidationError
				require.ErrorAs(t, err, &vErr)
				for _, field := range tt.expectedFields {
					assert.Contains(t, vErr.Fields, field)
				}
				assert.Empty(t, repo.created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 31, q.ID)
			assert.Equal(t, tt.expectedMinScore, q.MinScoreToPass)
			assert.Equal(t, 2, q.TeacherID)
			assert.Equal(t, fixedNow, q.CreatedAt)
		})
	}
}

func TestQuizService_Create_LessonLookupError(t *testing.T) {
	svc := NewQuizService(newMockQuizRepository(), &mockLessonOwners{err: errors.New("timeout")}, newMockUserRepository(), &mockEmitter{}, zap.NewNop())

	_, err := svc.Create(context.Background(), 2, models.CreateQuizRequest{Title: "C", Subject: "M", LessonID: intPtr(5), Questions: twoQuestions()})

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuizService_Get_StripsAnswers(t *testing.T) {
	repo := newMockQuizRepository(&models.Quiz{ID: 3, Title: "Contrôle", Questions: twoQuestions()})
	svc := newTestQuizService(repo, newMockUserRepository(), &mockEmitter{})

	public, err := svc.Get(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, public.Questions, 2)
	assert.Equal(t, []string{"3", "4"}, public.Questions[0].Options)

	_, err = svc.Get(context.Background(), 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuizService_Submit(t *testing.T) {
	english := &models.User{ID: 8, Name: "Sam", Role: models.RoleStudent, Locale: models.LocaleEN}
	noLocale := &models.User{ID: 9, Name: "Lina", Role: models.RoleStudent}

	tests := []struct {
		name                string
		userID              int
		answers             map[int]int
		acceptLanguage      string
		expectedDisplay     string
		expectedPercentage  int
		expectedPassed      bool
		expectedAction      models.ActionType
		expectedDescription string
	}{
		{
			name:                "all correct in french",
			userID:              7,
			answers:             map[int]int{0: 1, 1: 0},
			expectedDisplay:     "2 / 2",
			expectedPercentage:  100,
			expectedPassed:      true,
			expectedAction:      models.ActionQuizPassed,
			expectedDescription: "Quiz réussi : Contrôle (100%)",
		},
		{
			name:                "half correct reaches the threshold",
			userID:              7,
			answers:             map[int]int{0: 1},
			expectedDisplay:     "1 / 2",
			expectedPercentage:  50,
			expectedPassed:      true,
			expectedAction:      models.ActionQuizPassed,
			expectedDescription: "Quiz réussi : Contrôle (50%)",
		},
		{
			name:                "failed in the stored english locale",
			userID:              8,
			answers:             map[int]int{0: 0, 1: 1},
			acceptLanguage:      "fr-FR",
			expectedDisplay:     "0 / 2",
			expectedPercentage:  0,
			expectedPassed:      false,
			expectedAction:      models.ActionQuizFailed,
			expectedDescription: "Quiz failed: Contrôle (0%)",
		},
		{
			name:                "accept language without stored locale",
			userID:              9,
			answers:             map[int]int{0: 1, 1: 0},
			acceptLanguage:      "en-GB,en;q=0.8",
			expectedDisplay:     "2 / 2",
			expectedPercentage:  100,
			expectedPassed:      true,
			expectedAction:      models.ActionQuizPassed,
			expectedDescription: "Quiz passed: Contrôle (100%)",
		},
		{
			name:                "out of range selections count as wrong",
			userID:              7,
			answers:             map[int]int{0: 5, 7: 1},
			expectedDisplay:     "0 / 2",
			expectedPercentage:  0,
			expectedPassed:      false,
			expectedAction:      models.ActionQuizFailed,
			expectedDescription: "Quiz échoué : Contrôle (0%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockQuizRepository(&models.Quiz{ID: 3, Title: "Contrôle", MinScoreToPass: 50, Questions: twoQuestions()})
			emitter := &mockEmitter{}
			svc := newTestQuizService(repo, newMockUserRepository(student, english, noLocale), emitter)

			result, err := svc.Submit(context.Background(), tt.userID, 3, models.SubmitAnswersRequest{Answers: tt.answers}, tt.acceptLanguage)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedDisplay, result.Display)
			assert.Equal(t, tt.expectedPercentage, result.Percentage)
			assert.Equal(t, tt.expectedPassed, result.Passed)
			assert.Equal(t, 1, result.AttemptID)

			require.Len(t, repo.attempts, 1)
			assert.Equal(t, tt.expectedPassed, repo.attempts[0].Passed)
			assert.Equal(t, fixedNow, repo.attempts[0].CreatedAt)

			require.Len(t, emitter.activities, 1)
			activity := emitter.activities[0]
			assert.Equal(t, tt.expectedAction, activity.ActionType)
			assert.Equal(t, tt.expectedDescription, activity.Description)
			assert.Equal(t, "/quizzes/3", activity.Link)
		})
	}
}

func TestQuizService_Submit_Errors(t *testing.T) {
	t.Run("unknown quiz", func(t *testing.T) {
		emitter := &mockEmitter{}
		svc := newTestQuizService(newMockQuizRepository(), newMockUserRepository(student), emitter)

		_, err := svc.Submit(context.Background(), 7, 3, models.SubmitAnswersRequest{}, "")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Empty(t, emitter.activities)
	})

	t.Run("attempt not stored", func(t *testing.T) {
		repo := newMockQuizRepository(&models.Quiz{ID: 3, Title: "Contrôle", MinScoreToPass: 50, Questions: twoQuestions()})
		repo.err = errors.New("deadlock")
		emitter := &mockEmitter{}
		svc := newTestQuizService(repo, newMockUserRepository(student), emitter)

		_, err := svc.Submit(context.Background(), 7, 3, models.SubmitAnswersRequest{}, "")

		assert.Error(t, err)
		assert.Empty(t, emitter.activities)
	})
}

func TestQuizService_MyAttempts(t *testing.T) {
	repo := newMockQuizRepository(&models.Quiz{ID: 3, Questions: twoQuestions()})
	repo.attempts = []*models.QuizAttempt{{ID: 1, QuizID: 3, UserID: 7}, {ID: 2, QuizID: 3, UserID: 8}}
	svc := newTestQuizService(repo, newMockUserRepository(), &mockEmitter{})

	attempts, err := svc.MyAttempts(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 1, attempts[0].ID)

	_, err = svc.MyAttempts(context.Background(), 7, 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNegotiateLocale(t *testing.T) {
	tests := []struct {
		name           string
		stored         string
		acceptLanguage string
		expected       language.Tag
	}{
		{name: "nothing known", expected: language.French},
		{name: "stored locale wins", stored: "ar", acceptLanguage: "en", expected: language.Arabic},
		{name: "accept language", acceptLanguage: "en-US,en;q=0.9", expected: language.English},
		{name: "unsupported language", acceptLanguage: "de-DE", expected: language.French},
		{name: "malformed header", acceptLanguage: ";;;", expected: language.French},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, negotiateLocale(tt.stored, tt.acceptLanguage))
		})
	}
}
