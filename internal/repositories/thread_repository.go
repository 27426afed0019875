package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

type threadRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewThreadRepository creates a new message thread repository
func NewThreadRepository(db *sql.DB, logger *zap.Logger) *threadRepository {
	return &threadRepository{
		db:     db,
		logger: logger,
	}
}

const threadColumns = `t.id, t.student_id, s.name, t.teacher_id, te.name, t.subject, t.created_at, t.updated_at`

const threadJoins = `
		FROM threads t
		JOIN users s ON s.id = t.student_id
		JOIN users te ON te.id = t.teacher_id
`

func scanThread(scan func(dest ...any) error) (*models.Thread, error) {
	var t models.Thread
	if err := scan(&t.ID, &t.StudentID, &t.StudentName, &t.TeacherID, &t.TeacherName, &t.Subject, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a thread together with its first message
func (r *threadRepository) Create(ctx context.Context, thread *models.Thread, first *models.Message) error {
	return withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO threads (student_id, teacher_id, subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			thread.StudentID, thread.TeacherID, thread.Subject, thread.CreatedAt, thread.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create thread: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		thread.ID = int(id)
		first.ThreadID = thread.ID

		return insertMessage(ctx, tx, first)
	})
}

// GetByID retrieves a thread by ID
func (r *threadRepository) GetByID(ctx context.Context, id int) (*models.Thread, error) {
	query := `SELECT ` + threadColumns + threadJoins + ` WHERE t.id = ? LIMIT 1`

	thread, err := scanThread(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(models.MessageThreadNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get thread by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get thread by id: %w", err)
	}
	return thread, nil
}

// ListByParticipant retrieves the threads a user takes part in, most recently active first
func (r *threadRepository) ListByParticipant(ctx context.Context, userID int) ([]models.Thread, error) {
	query := `SELECT ` + threadColumns + threadJoins + `
		WHERE t.student_id = ? OR t.teacher_id = ?
		ORDER BY t.updated_at DESC, t.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	threads := []models.Thread{}
	for rows.Next() {
		thread, err := scanThread(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, *thread)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return threads, nil
}

// ListMessages retrieves the messages of a thread in chronological order
func (r *threadRepository) ListMessages(ctx context.Context, threadID int) ([]models.Message, error) {
	query := `
		SELECT m.id, m.thread_id, m.sender_id, u.name, m.body, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.thread_id = ?
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return messages, nil
}

// AddMessage appends a message to a thread and bumps the thread's activity time
func (r *threadRepository) AddMessage(ctx context.Context, message *models.Message) error {
	return withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE threads SET updated_at = ? WHERE id = ?`, message.CreatedAt, message.ThreadID)
		if err != nil {
			return fmt.Errorf("failed to touch thread: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperrors.NotFound(models.MessageThreadNotFound)
		}

		return insertMessage(ctx, tx, message)
	})
}

func insertMessage(ctx context.Context, tx *sql.Tx, message *models.Message) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO messages (thread_id, sender_id, body, created_at) VALUES (?, ?, ?, ?)`,
		message.ThreadID, message.SenderID, message.Body, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	message.ID = int(id)
	return nil
}
