package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

type subscriptionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB, logger *zap.Logger) *subscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Checkout replaces the user's active subscription with sub in one transaction
//
// The user row is locked first so concurrent checkouts for the same user run one
// after the other; every active subscription is expired before sub is inserted.
func (r *subscriptionRepository) Checkout(ctx context.Context, sub *models.Subscription) error {
	return withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		var userID int
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, sub.UserID).Scan(&userID)
		if err == sql.ErrNoRows {
			return apperrors.NotFound("Utilisateur non trouvé")
		}
		if err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}

		expire := `UPDATE subscriptions SET status = ?, updated_at = ? WHERE user_id = ? AND status = ?`
		if _, err := tx.ExecContext(ctx, expire, models.SubscriptionExpired, sub.CreatedAt, sub.UserID, models.SubscriptionActive); err != nil {
			return fmt.Errorf("failed to expire active subscriptions: %w", err)
		}

		insert := `
			INSERT INTO subscriptions (user_id, plan_name, start_date, end_date, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		result, err := tx.ExecContext(ctx, insert,
			sub.UserID,
			sub.PlanName,
			sub.StartDate,
			sub.EndDate,
			models.SubscriptionActive,
			sub.CreatedAt,
			sub.CreatedAt,
		)
		if isDuplicateKey(err) {
			return apperrors.Conflict("Un abonnement actif existe déjà")
		}
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		sub.ID = int(id)
		sub.Status = models.SubscriptionActive
		return nil
	})
}

const subscriptionColumns = `s.id, s.user_id, u.name, s.plan_name, s.start_date, s.end_date, s.status, s.created_at`

func scanSubscription(row interface{ Scan(dest ...any) error }) (*models.Subscription, error) {
	var s models.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.UserName, &s.PlanName, &s.StartDate, &s.EndDate, &s.Status, &s.CreatedAt)
	return &s, err
}

// GetCurrent retrieves the active subscription of a user, or the most recent one when none is active
func (r *subscriptionRepository) GetCurrent(ctx context.Context, userID int) (*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE s.user_id = ?
		ORDER BY s.status = 'active' DESC, s.created_at DESC, s.id DESC
		LIMIT 1
	`

	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(models.MessageSubscriptionNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get current subscription", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get current subscription: %w", err)
	}

	return sub, nil
}

// CancelActive cancels the active subscription of a user
func (r *subscriptionRepository) CancelActive(ctx context.Context, userID int, now time.Time) error {
	query := `UPDATE subscriptions SET status = ?, updated_at = ? WHERE user_id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, models.SubscriptionCancelled, now, userID, models.SubscriptionActive)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("Aucun abonnement actif")
	}

	return nil
}

// List retrieves subscriptions, newest first, optionally filtered by status
func (r *subscriptionRepository) List(ctx context.Context, status *models.SubscriptionStatus) ([]models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
	`
	var args []any
	if status != nil {
		query += " WHERE s.status = ?"
		args = append(args, *status)
	}
	query += " ORDER BY s.created_at DESC, s.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []models.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subs, nil
}

// ExpireDue marks every active subscription whose end date has passed as expired
//
// Returns the IDs of the users whose subscription expired.
func (r *subscriptionRepository) ExpireDue(ctx context.Context, now time.Time) ([]int, error) {
	var userIDs []int
	err := withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT user_id FROM subscriptions WHERE status = ? AND end_date <= ? FOR UPDATE`,
			models.SubscriptionActive, now,
		)
		if err != nil {
			return fmt.Errorf("failed to query due subscriptions: %w", err)
		}
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan user id: %w", err)
			}
			userIDs = append(userIDs, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("error iterating rows: %w", err)
		}
		rows.Close()

		if len(userIDs) == 0 {
			return nil
		}

		update := `UPDATE subscriptions SET status = ?, updated_at = ? WHERE status = ? AND end_date <= ?`
		if _, err := tx.ExecContext(ctx, update, models.SubscriptionExpired, now, models.SubscriptionActive, now); err != nil {
			return fmt.Errorf("failed to expire subscriptions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
