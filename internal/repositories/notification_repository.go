package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

type notificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *notificationRepository {
	return &notificationRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts the same notification for several users in one statement
//
// The notification is used as a template; UserID is taken from userIDs.
func (r *notificationRepository) CreateBatch(ctx context.Context, n models.Notification, userIDs []int) error {
	if len(userIDs) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(userIDs))
	args := make([]any, 0, len(userIDs)*7)
	for _, userID := range userIDs {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, FALSE, ?)")
		args = append(args, userID, n.Title, n.Message, n.Type, n.Link, n.CreatedAt)
	}

	query := `INSERT INTO notifications (user_id, title, message, type, link, is_read, created_at) VALUES ` +
		strings.Join(placeholders, ", ")

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *notificationRepository) ListByUser(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, link, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notifications, nil
}

// CountUnread returns the number of unread notifications of a user
func (r *notificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read
//
// Notifications of other users are reported as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = ? AND user_id = ?)`, id, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check notification existence: %w", err)
	}
	if !exists {
		return apperrors.NotFound(models.MessageNotificationNotFound)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification of a user as read and returns how many changed
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
