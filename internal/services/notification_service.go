package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
)

// Notification list limits
const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

// NotificationRepository is the interface that wraps methods for Notification table data access
type NotificationRepository interface {
	// Method CreateBatch inserts the same notification for several users.
	CreateBatch(ctx context.Context, notification models.Notification, userIDs []int) error
	// Method ListByUser retrieves a user's notifications, newest first.
	ListByUser(ctx context.Context, userID, limit int) ([]models.Notification, error)
	// Method CountUnread returns the number of unread notifications of a user.
	CountUnread(ctx context.Context, userID int) (int, error)
	// Method MarkRead marks one notification of the user as read.
	//
	// Notifications of other users produce an error wrapping apperrors.ErrNotFound.
	MarkRead(ctx context.Context, id, userID int) error
	// Method MarkAllRead marks every notification of a user as read and returns how many changed.
	MarkAllRead(ctx context.Context, userID int) (int64, error)
}

// RecipientRepository is the interface that wraps the user lookups needed to address notifications
type RecipientRepository interface {
	UserLookup
	// Method ListIDsByRole retrieves the IDs of every user with the given role.
	ListIDsByRole(ctx context.Context, role models.Role) ([]int, error)
}

// notificationService implements in-app notifications and their email copies
type notificationService struct {
	repo   NotificationRepository
	users  RecipientRepository
	mailer events.EmailDispatcher
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo NotificationRepository, users RecipientRepository, mailer events.EmailDispatcher, logger *zap.Logger) *notificationService {
	return &notificationService{
		repo:   repo,
		users:  users,
		mailer: mailer,
		logger: logger,
		now:    utcNow,
	}
}

// Notify stores a notification for one user and optionally dispatches an email copy
func (s *notificationService) Notify(ctx context.Context, userID int, n models.Notification, sendEmail bool) error {
	return s.deliver(ctx, []int{userID}, n, sendEmail)
}

// Broadcast sends an admin notification to every user of a role or to a single user
//
// Returns the number of recipients.
func (s *notificationService) Broadcast(ctx context.Context, req models.BroadcastRequest) (int, error) {
	req.Title = strings.TrimSpace(req.Title)
	fields, _ := validation.Fields(req)
	if (req.Role == "") == (req.UserID == nil) {
		fields["role"] = "indiquez soit un rôle soit un utilisateur"
	}
	if err := invalid(fields); err != nil {
		return 0, err
	}

	var userIDs []int
	if req.UserID != nil {
		if _, err := s.users.GetByID(ctx, *req.UserID); err != nil {
			return 0, err
		}
		userIDs = []int{*req.UserID}
	} else {
		ids, err := s.users.ListIDsByRole(ctx, req.Role)
		if err != nil {
			return 0, err
		}
		userIDs = ids
	}

	notificationType := req.Type
	if notificationType == "" {
		notificationType = models.NotificationInfo
	}

	n := models.Notification{
		Title:   req.Title,
		Message: req.Message,
		Type:    notificationType,
		Link:    req.Link,
	}
	if err := s.deliver(ctx, userIDs, n, req.Email); err != nil {
		return 0, err
	}

	s.logger.Info("notification broadcast", zap.Int("recipients", len(userIDs)), zap.String("role", string(req.Role)))
	return len(userIDs), nil
}

func (s *notificationService) deliver(ctx context.Context, userIDs []int, n models.Notification, sendEmail bool) error {
	if len(userIDs) == 0 {
		return nil
	}
	n.CreatedAt = s.now()
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}

	if err := s.repo.CreateBatch(ctx, n, userIDs); err != nil {
		return err
	}

	if sendEmail {
		for _, userID := range userIDs {
			s.sendEmail(ctx, userID, n)
		}
	}
	return nil
}

// sendEmail dispatches the email copy of n; lookup failures are logged and skipped
func (s *notificationService) sendEmail(ctx context.Context, userID int, n models.Notification) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to resolve email recipient", zap.Int("userId", userID), zap.Error(err))
		return
	}

	body := fmt.Sprintf("<p>Bonjour %s,</p><p>%s</p>", user.Name, n.Message)
	s.mailer.DispatchEmail(ctx, events.EmailPayload{
		To:      user.Email,
		Subject: n.Title,
		Body:    body,
	})
}

// List returns the user's notifications; limit defaults to 50 and is capped at 200
func (s *notificationService) List(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, clampLimit(limit, DefaultNotificationLimit, MaxNotificationLimit))
}

// UnreadCount returns the number of unread notifications of the user
func (s *notificationService) UnreadCount(ctx context.Context, userID int) (*models.UnreadCountResponse, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UnreadCountResponse{Count: count}, nil
}

// MarkRead marks one of the user's notifications as read
func (s *notificationService) MarkRead(ctx context.Context, userID, id int) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every notification of the user as read
func (s *notificationService) MarkAllRead(ctx context.Context, userID int) error {
	changed, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return err
	}
	s.logger.Debug("notifications marked read", zap.Int("userId", userID), zap.Int64("count", changed))
	return nil
}
