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

type ticketRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTicketRepository creates a new support ticket repository
func NewTicketRepository(db *sql.DB, logger *zap.Logger) *ticketRepository {
	return &ticketRepository{
		db:     db,
		logger: logger,
	}
}

const ticketColumns = `t.id, t.user_id, u.name, t.subject, t.message, t.status, COALESCE(t.reply, ''), t.created_at, t.updated_at`

func scanTicket(scan func(dest ...any) error) (*models.Ticket, error) {
	var t models.Ticket
	if err := scan(&t.ID, &t.UserID, &t.UserName, &t.Subject, &t.Message, &t.Status, &t.Reply, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new open ticket
func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO support_tickets (user_id, subject, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		ticket.UserID,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	ticket.ID = int(id)
	return nil
}

// GetByID retrieves a ticket by ID
func (r *ticketRepository) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM support_tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = ?
		LIMIT 1
	`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(models.MessageTicketNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get ticket by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get ticket by id: %w", err)
	}
	return ticket, nil
}

// ListByUser retrieves the tickets opened by a user, newest first
func (r *ticketRepository) ListByUser(ctx context.Context, userID int) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM support_tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.user_id = ?
		ORDER BY t.created_at DESC, t.id DESC
	`
	return r.queryTickets(ctx, query, userID)
}

// List retrieves all tickets, optionally filtered by status
func (r *ticketRepository) List(ctx context.Context, status *models.TicketStatus) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM support_tickets t
		JOIN users u ON u.id = t.user_id
	`
	var args []any
	if status != nil {
		query += " WHERE t.status = ?"
		args = append(args, *status)
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	return r.queryTickets(ctx, query, args...)
}

func (r *ticketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tickets, nil
}

// Reply stores an admin reply and marks the ticket answered
func (r *ticketRepository) Reply(ctx context.Context, id int, reply string, updatedAt time.Time) error {
	query := `UPDATE support_tickets SET reply = ?, status = ?, updated_at = ? WHERE id = ?`
	return r.update(ctx, query, reply, models.TicketAnswered, updatedAt, id)
}

// Close marks a ticket closed
func (r *ticketRepository) Close(ctx context.Context, id int, updatedAt time.Time) error {
	query := `UPDATE support_tickets SET status = ?, updated_at = ? WHERE id = ?`
	return r.update(ctx, query, models.TicketClosed, updatedAt, id)
}

func (r *ticketRepository) update(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound(models.MessageTicketNotFound)
	}
	return nil
}
