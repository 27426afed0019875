package models

import "time"

// TicketStatus is the status of a support ticket
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

// Ticket is a support request sent by a user
type Ticket struct {
	ID        int          `json:"id"`
	UserID    int          `json:"userId"`
	UserName  string       `json:"userName,omitempty"`
	Subject   string       `json:"subject"`
	Message   string       `json:"message"`
	Status    TicketStatus `json:"status"`
	Reply     string       `json:"reply,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CreateTicketRequest represents a request to open a ticket
type CreateTicketRequest struct {
	Subject string `json:"subject" validate:"notblank,max=255" example:"Paiement non reçu"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

// ReplyTicketRequest represents an admin reply to a ticket
type ReplyTicketRequest struct {
	Reply string `json:"reply" validate:"notblank,max=5000"`
}
