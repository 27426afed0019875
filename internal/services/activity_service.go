package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

// Activity list limits
const (
	DefaultMyActivityLimit    = 10
	DefaultAdminActivityLimit = 50
	MaxActivityLimit          = 100
)

// ActivityRepository is the interface that wraps methods for Activity table data access
type ActivityRepository interface {
	// Method Create appends an activity entry.
	//
	// "activity" parameter is the entry to store; its ID is set on success.
	Create(ctx context.Context, activity *models.Activity) error
	// Method List retrieves the latest activities, newest first.
	//
	// "userID" parameter restricts the list to one user when not nil.
	// "limit" parameter is the maximum number of entries.
	List(ctx context.Context, userID *int, limit int) ([]models.Activity, error)
}

// activityService records and reads the activity log
type activityService struct {
	repo   ActivityRepository
	users  UserLookup
	logger *zap.Logger
	now    func() time.Time
}

// NewActivityService creates a new activity service
func NewActivityService(repo ActivityRepository, users UserLookup, logger *zap.Logger) *activityService {
	return &activityService{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    utcNow,
	}
}

// Record appends an activity entry, filling the user name and role when the emitter left them out
//
// Entries for deleted users are still stored with whatever the event carried.
func (s *activityService) Record(ctx context.Context, activity models.Activity) error {
	if activity.UserID <= 0 || activity.ActionType == "" {
		return fmt.Errorf("activity misses user or action type")
	}

	if activity.UserName == "" || activity.Role == "" {
		user, err := s.users.GetByID(ctx, activity.UserID)
		switch {
		case err == nil:
			if activity.UserName == "" {
				activity.UserName = user.Name
			}
			if activity.Role == "" {
				activity.Role = user.Role
			}
		case errors.Is(err, apperrors.ErrNotFound):
			s.logger.Warn("activity for unknown user", zap.Int("userId", activity.UserID))
		default:
			return fmt.Errorf("failed to resolve activity user: %w", err)
		}
	}

	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = s.now()
	}

	if err := s.repo.Create(ctx, &activity); err != nil {
		return err
	}
	return nil
}

// ListMine returns the latest activities of one user
//
// "limit" defaults to 10 and is capped at 100.
func (s *activityService) ListMine(ctx context.Context, userID, limit int) ([]models.Activity, error) {
	return s.repo.List(ctx, &userID, clampLimit(limit, DefaultMyActivityLimit, MaxActivityLimit))
}

// ListAll returns the latest activities of everyone, or of one user when userID is set
//
// "limit" defaults to 50 and is capped at 100.
func (s *activityService) ListAll(ctx context.Context, userID *int, limit int) ([]models.Activity, error) {
	return s.repo.List(ctx, userID, clampLimit(limit, DefaultAdminActivityLimit, MaxActivityLimit))
}
