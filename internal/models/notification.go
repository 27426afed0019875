package models

import "time"

// NotificationType categorizes a notification
type NotificationType string

const (
	NotificationInfo         NotificationType = "info"
	NotificationSubscription NotificationType = "subscription"
	NotificationTicket       NotificationType = "ticket"
	NotificationMessage      NotificationType = "message"
	NotificationSystem       NotificationType = "system"
)

// Notification is a message shown to one user
type Notification struct {
	ID        int              `json:"id"`
	UserID    int              `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Link      string           `json:"link,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// BroadcastRequest represents an admin notification sent to a role or to one user
//
// Exactly one of Role and UserID must be set.
type BroadcastRequest struct {
	Role    Role             `json:"role,omitempty" validate:"omitempty,oneof=student teacher admin" example:"student"`
	UserID  *int             `json:"userId,omitempty" validate:"omitempty,gt=0"`
	Title   string           `json:"title" validate:"notblank,max=255" example:"Maintenance"`
	Message string           `json:"message" validate:"notblank" example:"La plateforme sera indisponible dimanche."`
	Type    NotificationType `json:"type,omitempty" validate:"omitempty,oneof=info subscription ticket message system"`
	Link    string           `json:"link,omitempty" validate:"max=512"`
	Email   bool             `json:"email"`
}

// UnreadCountResponse is the number of unread notifications
type UnreadCountResponse struct {
	Count int `json:"count"`
}
