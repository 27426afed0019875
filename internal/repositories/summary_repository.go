package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

type summaryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *sql.DB, logger *zap.Logger) *summaryRepository {
	return &summaryRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves summaries, newest first, optionally filtered by subject
func (r *summaryRepository) List(ctx context.Context, subject string) ([]models.Summary, error) {
	query := `
		SELECT s.id, s.title, s.subject, s.file_url, s.teacher_id, u.name, s.downloads_count, s.created_at
		FROM summaries s
		JOIN users u ON u.id = s.teacher_id
	`
	var args []any
	if subject != "" {
		query += " WHERE s.subject = ?"
		args = append(args, subject)
	}
	query += " ORDER BY s.created_at DESC, s.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	summaries := []models.Summary{}
	for rows.Next() {
		var s models.Summary
		err := rows.Scan(&s.ID, &s.Title, &s.Subject, &s.FileURL, &s.TeacherID, &s.TeacherName, &s.DownloadsCount, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return summaries, nil
}

// GetByID retrieves a summary by ID
func (r *summaryRepository) GetByID(ctx context.Context, id int) (*models.Summary, error) {
	query := `
		SELECT s.id, s.title, s.subject, s.file_url, s.teacher_id, u.name, s.downloads_count, s.created_at
		FROM summaries s
		JOIN users u ON u.id = s.teacher_id
		WHERE s.id = ?
		LIMIT 1
	`

	var s models.Summary
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Title, &s.Subject, &s.FileURL, &s.TeacherID, &s.TeacherName, &s.DownloadsCount, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(models.MessageSummaryNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get summary by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get summary by id: %w", err)
	}

	return &s, nil
}

// Create inserts a new summary
func (r *summaryRepository) Create(ctx context.Context, summary *models.Summary) error {
	query := `
		INSERT INTO summaries (title, subject, file_url, teacher_id, downloads_count, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`

	result, err := r.db.ExecContext(ctx, query, summary.Title, summary.Subject, summary.FileURL, summary.TeacherID, summary.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	summary.ID = int(id)
	return nil
}

// Delete deletes a summary. Lesson blocks referencing it are left dangling.
func (r *summaryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound(models.MessageSummaryNotFound)
	}

	return nil
}

// IncrementDownloads atomically adds one to the download counter and returns the file URL
func (r *summaryRepository) IncrementDownloads(ctx context.Context, id int) (string, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE summaries SET downloads_count = downloads_count + 1 WHERE id = ?`, id)
	if err != nil {
		return "", fmt.Errorf("failed to increment downloads: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return "", apperrors.NotFound(models.MessageSummaryNotFound)
	}

	var fileURL string
	if err := r.db.QueryRowContext(ctx, `SELECT file_url FROM summaries WHERE id = ?`, id).Scan(&fileURL); err != nil {
		if err == sql.ErrNoRows {
			return "", apperrors.NotFound(models.MessageSummaryNotFound)
		}
		return "", fmt.Errorf("failed to get summary file url: %w", err)
	}

	return fileURL, nil
}

// Search retrieves summaries whose title or subject contains q
func (r *summaryRepository) Search(ctx context.Context, q string, limit int) ([]models.SearchHit, error) {
	query := `
		SELECT id, title, subject
		FROM summaries
		WHERE title LIKE ? OR subject LIKE ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	pattern := containsPattern(q)
	rows, err := r.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search summaries: %w", err)
	}
	defer rows.Close()

	return scanSearchHits(rows)
}
