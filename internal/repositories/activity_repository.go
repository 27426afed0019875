package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/madaure/backend/internal/models"
	"go.uber.org/zap"
)

type activityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sql.DB, logger *zap.Logger) *activityRepository {
	return &activityRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an activity entry. Entries are never updated or deleted.
func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (user_id, user_name, role, action_type, description, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		activity.UserID,
		activity.UserName,
		activity.Role,
		activity.ActionType,
		activity.Description,
		activity.Link,
		activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	activity.ID = int(id)
	return nil
}

// List retrieves the latest activities, newest first, optionally for one user
func (r *activityRepository) List(ctx context.Context, userID *int, limit int) ([]models.Activity, error) {
	query := `
		SELECT id, user_id, user_name, role, action_type, description, link, created_at
		FROM activities
	`
	var args []any
	if userID != nil {
		query += " WHERE user_id = ?"
		args = append(args, *userID)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		err := rows.Scan(&a.ID, &a.UserID, &a.UserName, &a.Role, &a.ActionType, &a.Description, &a.Link, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return activities, nil
}
