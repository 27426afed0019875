package services

import (
	"context"
	"fmt"
	"time"

	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
)

// SubscriptionRepository is the interface that wraps methods for Subscription table data access
type SubscriptionRepository interface {
	// Method Checkout stores sub as the only active subscription of its user.
	//
	// Every previously active subscription of the user is expired in the same transaction.
	// A concurrent checkout that still collides returns an error wrapping apperrors.ErrConflict.
	Checkout(ctx context.Context, sub *models.Subscription) error
	// Method GetCurrent retrieves the active subscription of a user, or the most recent one.
	//
	// If the user never subscribed, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetCurrent(ctx context.Context, userID int) (*models.Subscription, error)
	// Method CancelActive cancels the active subscription of a user.
	CancelActive(ctx context.Context, userID int, now time.Time) error
	// Method List retrieves subscriptions, optionally of one status.
	List(ctx context.Context, status *models.SubscriptionStatus) ([]models.Subscription, error)
	// Method ExpireDue expires active subscriptions whose end date is not after now and returns their users.
	ExpireDue(ctx context.Context, now time.Time) ([]int, error)
}

// subscriptionService implements the subscription lifecycle
type subscriptionService struct {
	repo     SubscriptionRepository
	notifier Notifier
	emitter  events.Emitter
	logger   *zap.Logger
	now      func() time.Time
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo SubscriptionRepository, notifier Notifier, emitter events.Emitter, logger *zap.Logger) *subscriptionService {
	return &subscriptionService{
		repo:     repo,
		notifier: notifier,
		emitter:  emitter,
		logger:   logger,
		now:      utcNow,
	}
}

// Plans returns the plan catalog
func (s *subscriptionService) Plans() []models.Plan {
	return models.Plans()
}

// Checkout starts a subscription to a plan, replacing any active one
func (s *subscriptionService) Checkout(ctx context.Context, userID int, req models.CheckoutRequest) (*models.Subscription, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	plan, ok := models.PlanByName(req.PlanName)
	if !ok {
		return nil, apperrors.InvalidField("planName", "formule inconnue")
	}

	start := s.now()
	sub := &models.Subscription{
		UserID:    userID,
		PlanName:  plan.Name,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, plan.DurationDays),
		CreatedAt: start,
	}
	if err := s.repo.Checkout(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription activated",
		zap.Int("userId", userID),
		zap.String("plan", plan.Name),
		zap.Int("subscriptionId", sub.ID),
	)
	s.emitter.Emit(ctx, models.Activity{
		UserID:      userID,
		ActionType:  models.ActionSubscriptionActivated,
		Description: fmt.Sprintf("Abonnement %s activé", plan.Name),
		Link:        "/subscriptions/mine",
	})
	notify(ctx, s.notifier, s.logger, userID, models.Notification{
		Title:   "Abonnement activé",
		Message: fmt.Sprintf("Votre abonnement %s est actif jusqu'au %s.", plan.Name, sub.EndDate.Format("02/01/2006")),
		Type:    models.NotificationSubscription,
		Link:    "/subscriptions/mine",
	}, true)

	return sub, nil
}

// Mine returns the active subscription of a user, or the most recent one
func (s *subscriptionService) Mine(ctx context.Context, userID int) (*models.Subscription, error) {
	return s.repo.GetCurrent(ctx, userID)
}

// Cancel cancels the active subscription of a user
func (s *subscriptionService) Cancel(ctx context.Context, userID int) error {
	if err := s.repo.CancelActive(ctx, userID, s.now()); err != nil {
		return err
	}
	s.logger.Info("subscription cancelled", zap.Int("userId", userID))
	return nil
}

// List returns every subscription, optionally of one status
func (s *subscriptionService) List(ctx context.Context, status string) ([]models.Subscription, error) {
	if status == "" {
		return s.repo.List(ctx, nil)
	}
	st := models.SubscriptionStatus(status)
	switch st {
	case models.SubscriptionActive, models.SubscriptionExpired, models.SubscriptionCancelled:
	default:
		return nil, apperrors.InvalidField("status", "statut inconnu")
	}
	return s.repo.List(ctx, &st)
}

// ExpireDue expires subscriptions past their end date and notifies their users
//
// Returns the number of expired subscriptions.
func (s *subscriptionService) ExpireDue(ctx context.Context) (int, error) {
	userIDs, err := s.repo.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, err
	}

	for _, userID := range userIDs {
		notify(ctx, s.notifier, s.logger, userID, models.Notification{
			Title:   "Abonnement expiré",
			Message: "Votre abonnement a expiré. Renouvelez-le pour garder l'accès aux cours.",
			Type:    models.NotificationSubscription,
			Link:    "/subscriptions/plans",
		}, true)
	}

	return len(userIDs), nil
}
