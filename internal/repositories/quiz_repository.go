package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

type quizRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB, logger *zap.Logger) *quizRepository {
	return &quizRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new quiz; questions are stored as a JSON document
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO quizzes (title, subject, lesson_id, teacher_id, min_score_to_pass, questions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		quiz.Title,
		quiz.Subject,
		quiz.LessonID,
		quiz.TeacherID,
		quiz.MinScoreToPass,
		string(questions),
		quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	quiz.ID = int(id)
	return nil
}

// GetByID retrieves a quiz with its answers
func (r *quizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	query := `
		SELECT id, title, subject, lesson_id, teacher_id, min_score_to_pass, questions, created_at
		FROM quizzes
		WHERE id = ?
		LIMIT 1
	`

	var quiz models.Quiz
	var lessonID sql.NullInt64
	var questions string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID,
		&quiz.Title,
		&quiz.Subject,
		&lessonID,
		&quiz.TeacherID,
		&quiz.MinScoreToPass,
		&questions,
		&quiz.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(models.MessageQuizNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get quiz by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}

	if lessonID.Valid {
		v := int(lessonID.Int64)
		quiz.LessonID = &v
	}
	if err := json.Unmarshal([]byte(questions), &quiz.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions of quiz %d: %w", id, err)
	}

	return &quiz, nil
}

// List retrieves quizzes without questions, newest first
func (r *quizRepository) List(ctx context.Context, filter models.QuizFilter) ([]models.QuizListItem, error) {
	var where []string
	var args []any
	if filter.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, filter.Subject)
	}
	if filter.LessonID != nil {
		where = append(where, "lesson_id = ?")
		args = append(args, *filter.LessonID)
	}

	query := `
		SELECT id, title, subject, lesson_id, teacher_id, min_score_to_pass, JSON_LENGTH(questions), created_at
		FROM quizzes
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []models.QuizListItem{}
	for rows.Next() {
		var q models.QuizListItem
		var lessonID sql.NullInt64
		if err := rows.Scan(&q.ID, &q.Title, &q.Subject, &lessonID, &q.TeacherID, &q.MinScoreToPass, &q.QuestionCount, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		if lessonID.Valid {
			v := int(lessonID.Int64)
			q.LessonID = &v
		}
		quizzes = append(quizzes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return quizzes, nil
}

// Search retrieves quizzes whose title or subject contains q
func (r *quizRepository) Search(ctx context.Context, q string, limit int) ([]models.SearchHit, error) {
	query := `
		SELECT id, title, subject
		FROM quizzes
		WHERE title LIKE ? OR subject LIKE ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	pattern := containsPattern(q)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search quizzes: %w", err)
	}
	defer rows.Close()

	return scanSearchHits(rows)
}

// CreateAttempt stores a scored submission
func (r *quizRepository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	query := `
		INSERT INTO quiz_attempts (quiz_id, user_id, score, total, percentage, passed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		attempt.QuizID,
		attempt.UserID,
		attempt.Score,
		attempt.Total,
		attempt.Percentage,
		attempt.Passed,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	attempt.ID = int(id)
	return nil
}

// ListAttempts retrieves a user's attempts at a quiz, newest first
func (r *quizRepository) ListAttempts(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error) {
	query := `
		SELECT id, quiz_id, user_id, score, total, percentage, passed, created_at
		FROM quiz_attempts
		WHERE quiz_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.QuizAttempt{}
	for rows.Next() {
		var a models.QuizAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.Total, &a.Percentage, &a.Passed, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}
