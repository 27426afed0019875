package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
)

// TicketRepository is the interface that wraps methods for SupportTicket table data access
type TicketRepository interface {
	// Method Create inserts a new ticket; its ID is set on success.
	Create(ctx context.Context, ticket *models.Ticket) error
	// Method GetByID retrieves a ticket by ID.
	//
	// If ticket with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Ticket, error)
	// Method ListByUser retrieves the tickets opened by a user.
	ListByUser(ctx context.Context, userID int) ([]models.Ticket, error)
	// Method List retrieves all tickets, optionally of one status.
	List(ctx context.Context, status *models.TicketStatus) ([]models.Ticket, error)
	// Method Reply stores an admin reply and marks the ticket answered.
	Reply(ctx context.Context, id int, reply string, updatedAt time.Time) error
	// Method Close marks a ticket closed.
	Close(ctx context.Context, id int, updatedAt time.Time) error
}

// ticketService implements support tickets
type ticketService struct {
	repo     TicketRepository
	notifier Notifier
	emitter  events.Emitter
	logger   *zap.Logger
	now      func() time.Time
}

// NewTicketService creates a new support ticket service
func NewTicketService(repo TicketRepository, notifier Notifier, emitter events.Emitter, logger *zap.Logger) *ticketService {
	return &ticketService{
		repo:     repo,
		notifier: notifier,
		emitter:  emitter,
		logger:   logger,
		now:      utcNow,
	}
}

// Create opens a ticket for userID
func (s *ticketService) Create(ctx context.Context, userID int, req models.CreateTicketRequest) (*models.Ticket, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &models.Ticket{
		UserID:    userID,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    models.TicketOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, models.Activity{
		UserID:      userID,
		ActionType:  models.ActionTicketCreated,
		Description: ticket.Subject,
		Link:        "/support",
	})
	return ticket, nil
}

// Mine returns the tickets of a user
func (s *ticketService) Mine(ctx context.Context, userID int) ([]models.Ticket, error) {
	return s.repo.ListByUser(ctx, userID)
}

// List returns every ticket, optionally of one status
func (s *ticketService) List(ctx context.Context, status string) ([]models.Ticket, error) {
	if status == "" {
		return s.repo.List(ctx, nil)
	}
	st := models.TicketStatus(status)
	switch st {
	case models.TicketOpen, models.TicketAnswered, models.TicketClosed:
	default:
		return nil, apperrors.InvalidField("status", "statut inconnu")
	}
	return s.repo.List(ctx, &st)
}

// Reply answers a ticket and notifies its owner
//
// Closed tickets cannot be answered.
func (s *ticketService) Reply(ctx context.Context, id int, req models.ReplyTicketRequest) (*models.Ticket, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketClosed {
		return nil, apperrors.Conflict("Ce ticket est fermé")
	}

	now := s.now()
	if err := s.repo.Reply(ctx, id, req.Reply, now); err != nil {
		return nil, err
	}
	ticket.Reply = req.Reply
	ticket.Status = models.TicketAnswered
	ticket.UpdatedAt = now

	notify(ctx, s.notifier, s.logger, ticket.UserID, models.Notification{
		Title:   "Réponse du support",
		Message: fmt.Sprintf("Votre ticket « %s » a reçu une réponse.", ticket.Subject),
		Type:    models.NotificationTicket,
		Link:    "/support",
	}, true)

	return ticket, nil
}

// Close closes a ticket; only its owner or an admin may do it
//
// Closing a closed ticket returns it unchanged.
func (s *ticketService) Close(ctx context.Context, userID int, role models.Role, id int) (*models.Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(userID, role, ticket.UserID) {
		return nil, apperrors.Forbidden("Ce ticket ne vous appartient pas")
	}
	if ticket.Status == models.TicketClosed {
		return ticket, nil
	}

	now := s.now()
	if err := s.repo.Close(ctx, id, now); err != nil {
		return nil, err
	}
	ticket.Status = models.TicketClosed
	ticket.UpdatedAt = now
	return ticket, nil
}
