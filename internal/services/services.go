// Package services implements the business logic of the MADAURE API
package services

import (
	"context"
	"time"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
)

// UserLookup is the interface that wraps the user lookup shared by most services
type UserLookup interface {
	// Method GetByID retrieves a user by ID.
	//
	// "id" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Notifier is the interface that wraps in-app notification delivery
type Notifier interface {
	// Method Notify stores a notification for one user and optionally sends it by email.
	//
	// "userID" parameter is the recipient.
	// "notification" parameter carries title, message, type and link; its UserID is ignored.
	// "sendEmail" parameter requests an email copy sent through the email queue.
	//
	// If the notification cannot be stored, the error will be returned.
	Notify(ctx context.Context, userID int, notification models.Notification, sendEmail bool) error
}

// clampLimit returns def for non-positive limits and caps the rest at max
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// canManage reports whether a user may modify a resource owned by ownerID
func canManage(userID int, role models.Role, ownerID int) bool {
	return role == models.RoleAdmin || userID == ownerID
}

// notify sends a notification and logs failures; notifications never fail the calling action
func notify(ctx context.Context, notifier Notifier, logger *zap.Logger, userID int, n models.Notification, sendEmail bool) {
	if err := notifier.Notify(ctx, userID, n, sendEmail); err != nil {
		logger.Error("failed to notify user",
			zap.Int("userId", userID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
	}
}

// invalid builds a validation error from collected field messages, or returns nil when there are none
func invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.Invalid(validation.MessageInvalid, fields)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
