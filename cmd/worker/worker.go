package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"go.uber.org/zap"
)

// ActivityRecorder defines the interface for storing activity log entries
type ActivityRecorder interface {
	// Record stores one activity, filling the user name and role when missing
	//
	// If some error occurs during data insert, the error will be returned.
	Record(ctx context.Context, activity models.Activity) error
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	// Send delivers one email
	//
	// If the SMTP server rejects the message, the error will be returned.
	Send(ctx context.Context, email events.EmailPayload) error
}

// Worker handles task processing
type Worker struct {
	logger     *zap.Logger
	activities ActivityRecorder
	mailer     EmailSender
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, activities ActivityRecorder, mailer EmailSender) *Worker {
	return &Worker{
		logger:     logger,
		activities: activities,
		mailer:     mailer,
	}
}

// Register binds the task handlers to mux
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(events.TypeActivityRecord, w.HandleActivityRecord)
	mux.HandleFunc(events.TypeNotificationEmail, w.HandleNotificationEmail)
}

// HandleActivityRecord stores the activity carried by an activity:record task
//
// Malformed payloads are not retried.
func (w *Worker) HandleActivityRecord(ctx context.Context, t *asynq.Task) error {
	activity, err := events.ParseActivityTask(t)
	if err != nil {
		w.logger.Error("Dropping malformed activity task", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.activities.Record(ctx, activity); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	w.logger.Debug("Activity recorded",
		zap.Int("user_id", activity.UserID),
		zap.String("action_type", string(activity.ActionType)),
	)
	return nil
}

// HandleNotificationEmail sends the email carried by a notification:email task
//
// Malformed payloads are not retried.
func (w *Worker) HandleNotificationEmail(ctx context.Context, t *asynq.Task) error {
	email, err := events.ParseEmailTask(t)
	if err != nil {
		w.logger.Error("Dropping malformed email task", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.mailer.Send(ctx, email); err != nil {
		return err
	}

	w.logger.Info("Notification email sent", zap.String("subject", email.Subject))
	return nil
}
