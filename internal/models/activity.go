package models

import "time"

// ActionType categorizes an activity log entry
type ActionType string

const (
	ActionLogin                 ActionType = "login"
	ActionRegister              ActionType = "register"
	ActionLessonCreated         ActionType = "lesson_created"
	ActionLessonUpdated         ActionType = "lesson_updated"
	ActionLessonDeleted         ActionType = "lesson_deleted"
	ActionLessonCompleted       ActionType = "lesson_completed"
	ActionQuizPassed            ActionType = "quiz_passed"
	ActionQuizFailed            ActionType = "quiz_failed"
	ActionMessageSent           ActionType = "message_sent"
	ActionSubscriptionActivated ActionType = "subscription_activated"
	ActionTicketCreated         ActionType = "ticket_created"
)

// Activity is one immutable entry of the activity log
type Activity struct {
	ID          int        `json:"id"`
	UserID      int        `json:"userId"`
	UserName    string     `json:"userName"`
	Role        Role       `json:"role"`
	ActionType  ActionType `json:"actionType"`
	Description string     `json:"description"`
	Link        string     `json:"link,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
