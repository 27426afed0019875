package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
)

// ThreadRepository is the interface that wraps methods for Thread and Message table data access
type ThreadRepository interface {
	// Method Create inserts a thread together with its first message.
	Create(ctx context.Context, thread *models.Thread, first *models.Message) error
	// Method GetByID retrieves a thread by ID.
	//
	// If thread with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Thread, error)
	// Method ListByParticipant retrieves the threads a user takes part in, most recently active first.
	ListByParticipant(ctx context.Context, userID int) ([]models.Thread, error)
	// Method ListMessages retrieves the messages of a thread in chronological order.
	ListMessages(ctx context.Context, threadID int) ([]models.Message, error)
	// Method AddMessage appends a message and bumps the thread's updatedAt.
	AddMessage(ctx context.Context, message *models.Message) error
}

// threadService implements student-teacher conversations
type threadService struct {
	repo     ThreadRepository
	users    UserLookup
	notifier Notifier
	emitter  events.Emitter
	logger   *zap.Logger
	now      func() time.Time
}

// NewThreadService creates a new message thread service
func NewThreadService(repo ThreadRepository, users UserLookup, notifier Notifier, emitter events.Emitter, logger *zap.Logger) *threadService {
	return &threadService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		emitter:  emitter,
		logger:   logger,
		now:      utcNow,
	}
}

// Create starts a thread between a student and a teacher with a first message
func (s *threadService) Create(ctx context.Context, studentID int, req models.CreateThreadRequest) (*models.Thread, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	teacher, err := s.users.GetByID(ctx, req.TeacherID)
	if errors.Is(err, apperrors.ErrNotFound) || (err == nil && teacher.Role != models.RoleTeacher) {
		return nil, apperrors.InvalidField("teacherId", "enseignant introuvable")
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	thread := &models.Thread{
		StudentID:   studentID,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Subject:     req.Subject,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	first := &models.Message{SenderID: studentID, Body: req.Body, CreatedAt: now}
	if err := s.repo.Create(ctx, thread, first); err != nil {
		return nil, err
	}

	s.afterMessage(ctx, thread, first)
	return thread, nil
}

// List returns the threads of a user, as student or as teacher
func (s *threadService) List(ctx context.Context, userID int) ([]models.Thread, error) {
	return s.repo.ListByParticipant(ctx, userID)
}

// Messages returns the messages of a thread; only its participants may read it
func (s *threadService) Messages(ctx context.Context, userID, threadID int) ([]models.Message, error) {
	if _, err := s.participantThread(ctx, userID, threadID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, threadID)
}

// Send appends a message to a thread and notifies the other participant
func (s *threadService) Send(ctx context.Context, userID, threadID int, req models.SendMessageRequest) (*models.Message, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	thread, err := s.participantThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{ThreadID: threadID, SenderID: userID, Body: req.Body, CreatedAt: s.now()}
	if err := s.repo.AddMessage(ctx, message); err != nil {
		return nil, err
	}

	s.afterMessage(ctx, thread, message)
	return message, nil
}

func (s *threadService) participantThread(ctx context.Context, userID, threadID int) (*models.Thread, error) {
	thread, err := s.repo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(userID) {
		return nil, apperrors.Forbidden("Vous ne participez pas à cette conversation")
	}
	return thread, nil
}

// afterMessage emits message_sent and notifies the recipient
func (s *threadService) afterMessage(ctx context.Context, thread *models.Thread, message *models.Message) {
	link := fmt.Sprintf("/messages/%d", thread.ID)

	s.emitter.Emit(ctx, models.Activity{
		UserID:      message.SenderID,
		ActionType:  models.ActionMessageSent,
		Description: thread.Subject,
		Link:        link,
	})
	notify(ctx, s.notifier, s.logger, thread.OtherParticipant(message.SenderID), models.Notification{
		Title:   "Nouveau message",
		Message: fmt.Sprintf("Nouveau message dans « %s ».", thread.Subject),
		Type:    models.NotificationMessage,
		Link:    link,
	}, false)
}
