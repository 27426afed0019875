package models

import "time"

// DefaultMinScoreToPass is the pass threshold in percent when a quiz does not set one
const DefaultMinScoreToPass = 50

// Quiz is a persisted quiz
type Quiz struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Subject        string     `json:"subject"`
	LessonID       *int       `json:"lessonId,omitempty"`
	TeacherID      int        `json:"teacherId"`
	MinScoreToPass int        `json:"minScoreToPass"`
	Questions      []Question `json:"questions"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// QuizListItem represents a quiz in list responses
type QuizListItem struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject"`
	LessonID       *int      `json:"lessonId,omitempty"`
	TeacherID      int       `json:"teacherId"`
	MinScoreToPass int       `json:"minScoreToPass"`
	QuestionCount  int       `json:"questionCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PublicQuiz is a persisted quiz with answers stripped
type PublicQuiz struct {
	ID             int              `json:"id"`
	Title          string           `json:"title"`
	Subject        string           `json:"subject"`
	LessonID       *int             `json:"lessonId,omitempty"`
	TeacherID      int              `json:"teacherId"`
	MinScoreToPass int              `json:"minScoreToPass"`
	Questions      []PublicQuestion `json:"questions"`
}

// Public strips the answers of q
func (q *Quiz) Public() PublicQuiz {
	return PublicQuiz{
		ID:             q.ID,
		Title:          q.Title,
		Subject:        q.Subject,
		LessonID:       q.LessonID,
		TeacherID:      q.TeacherID,
		MinScoreToPass: q.MinScoreToPass,
		Questions:      StripAnswers(q.Questions),
	}
}

// CreateQuizRequest represents a request to create a persisted quiz
type CreateQuizRequest struct {
	Title          string     `json:"title" validate:"notblank,max=255" example:"Suites: contrôle"`
	Subject        string     `json:"subject" validate:"notblank,max=100" example:"Mathématiques"`
	LessonID       *int       `json:"lessonId,omitempty" validate:"omitempty,gt=0"`
	MinScoreToPass *int       `json:"minScoreToPass,omitempty" validate:"omitempty,min=0,max=100" example:"60"`
	Questions      []Question `json:"questions" validate:"min=1,dive"`
}

// QuizFilter holds optional filters of the quiz list
type QuizFilter struct {
	Subject  string
	LessonID *int
}

// QuizAttempt is a stored submission of a persisted quiz
type QuizAttempt struct {
	ID         int       `json:"id"`
	QuizID     int       `json:"quizId"`
	UserID     int       `json:"userId"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
	Passed     bool      `json:"passed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// QuizResultResponse is returned after submitting a persisted quiz
type QuizResultResponse struct {
	AttemptID      int    `json:"attemptId"`
	Score          int    `json:"score"`
	Total          int    `json:"total"`
	Display        string `json:"display" example:"3 / 4"`
	Percentage     int    `json:"percentage"`
	MinScoreToPass int    `json:"minScoreToPass"`
	Passed         bool   `json:"passed"`
}
