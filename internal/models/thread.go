package models

import "time"

// Thread is a conversation between a student and a teacher
type Thread struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"studentId"`
	StudentName string    `json:"studentName,omitempty"`
	TeacherID   int       `json:"teacherId"`
	TeacherName string    `json:"teacherName,omitempty"`
	Subject     string    `json:"subject"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID takes part in the thread
func (t *Thread) HasParticipant(userID int) bool {
	return t.StudentID == userID || t.TeacherID == userID
}

// OtherParticipant returns the ID of the participant who is not userID
func (t *Thread) OtherParticipant(userID int) int {
	if t.StudentID == userID {
		return t.TeacherID
	}
	return t.StudentID
}

// Message is one message of a thread
type Message struct {
	ID         int       `json:"id"`
	ThreadID   int       `json:"threadId"`
	SenderID   int       `json:"senderId"`
	SenderName string    `json:"senderName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateThreadRequest represents a student's request to start a thread
type CreateThreadRequest struct {
	TeacherID int    `json:"teacherId" validate:"gt=0" example:"2"`
	Subject   string `json:"subject" validate:"notblank,max=255" example:"Question sur l'exercice 3"`
	Body      string `json:"body" validate:"notblank,max=5000"`
}

// SendMessageRequest represents a new message in a thread
type SendMessageRequest struct {
	Body string `json:"body" validate:"notblank,max=5000"`
}
