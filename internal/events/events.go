// Package events decouples business services from the activity log and outgoing mail
//
// Services emit through the Emitter and EmailDispatcher interfaces; the queue
// implementations hand the work to the worker process over asynq.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/madaure/backend/internal/models"
	"go.uber.org/zap"
)

// Task types consumed by the worker
const (
	TypeActivityRecord    = "activity:record"
	TypeNotificationEmail = "notification:email"
)

// Queues served by the worker
const (
	QueueActivity = "activity"
	QueueEmail    = "email"
)

// Emitter records activity log entries. Emit never fails the caller.
type Emitter interface {
	// Emit records one activity
	//
	// "ctx" is the context for the request.
	// "activity" is the entry to record; CreatedAt is set when zero.
	Emit(ctx context.Context, activity models.Activity)
}

// EmailDispatcher hands an email to the mail sender. Dispatch never fails the caller.
type EmailDispatcher interface {
	// DispatchEmail queues one email
	//
	// "ctx" is the context for the request.
	// "email" is the message to send.
	DispatchEmail(ctx context.Context, email EmailPayload)
}

// Enqueuer is the subset of *asynq.Client used here
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Recorder persists an activity, see services.ActivityService
type Recorder interface {
	Record(ctx context.Context, activity models.Activity) error
}

// EmailPayload is the payload of a notification:email task
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewActivityTask builds an activity:record task
func NewActivityTask(activity models.Activity) (*asynq.Task, error) {
	payload, err := json.Marshal(activity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity: %w", err)
	}
	return asynq.NewTask(TypeActivityRecord, payload, asynq.MaxRetry(5), asynq.Queue(QueueActivity)), nil
}

// ParseActivityTask decodes the payload of an activity:record task
func ParseActivityTask(t *asynq.Task) (models.Activity, error) {
	var activity models.Activity
	if err := json.Unmarshal(t.Payload(), &activity); err != nil {
		return activity, fmt.Errorf("failed to unmarshal activity payload: %w", err)
	}
	if activity.UserID <= 0 || activity.ActionType == "" {
		return activity, fmt.Errorf("activity payload misses user or action type")
	}
	return activity, nil
}

// NewEmailTask builds a notification:email task
func NewEmailTask(email EmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email: %w", err)
	}
	return asynq.NewTask(TypeNotificationEmail, payload, asynq.MaxRetry(3), asynq.Queue(QueueEmail)), nil
}

// ParseEmailTask decodes the payload of a notification:email task
func ParseEmailTask(t *asynq.Task) (EmailPayload, error) {
	var email EmailPayload
	if err := json.Unmarshal(t.Payload(), &email); err != nil {
		return email, fmt.Errorf("failed to unmarshal email payload: %w", err)
	}
	if email.To == "" {
		return email, fmt.Errorf("email payload misses recipient")
	}
	return email, nil
}

type queueEmitter struct {
	client Enqueuer
	logger *zap.Logger
	now    func() time.Time
}

// NewQueueEmitter creates an Emitter that enqueues activity:record tasks
func NewQueueEmitter(client Enqueuer, logger *zap.Logger) *queueEmitter {
	return &queueEmitter{client: client, logger: logger, now: time.Now}
}

// Emit enqueues the activity; failures are logged and dropped
func (e *queueEmitter) Emit(ctx context.Context, activity models.Activity) {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = e.now().UTC()
	}

	task, err := NewActivityTask(activity)
	if err == nil {
		// The triggering request may finish before the enqueue does
		_, err = e.client.EnqueueContext(context.WithoutCancel(ctx), task)
	}
	if err != nil {
		e.logger.Error("failed to emit activity",
			zap.Int("userId", activity.UserID),
			zap.String("actionType", string(activity.ActionType)),
			zap.Error(err),
		)
	}
}

// DispatchEmail enqueues the email; failures are logged and dropped
func (e *queueEmitter) DispatchEmail(ctx context.Context, email EmailPayload) {
	task, err := NewEmailTask(email)
	if err == nil {
		_, err = e.client.EnqueueContext(context.WithoutCancel(ctx), task)
	}
	if err != nil {
		e.logger.Error("failed to dispatch email", zap.String("subject", email.Subject), zap.Error(err))
	}
}

type syncEmitter struct {
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewSyncEmitter creates an Emitter that records activities in the calling goroutine
func NewSyncEmitter(recorder Recorder, logger *zap.Logger) *syncEmitter {
	return &syncEmitter{recorder: recorder, logger: logger, now: time.Now}
}

// Emit records the activity; failures are logged and dropped
func (e *syncEmitter) Emit(ctx context.Context, activity models.Activity) {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = e.now().UTC()
	}
	if err := e.recorder.Record(context.WithoutCancel(ctx), activity); err != nil {
		e.logger.Error("failed to record activity",
			zap.Int("userId", activity.UserID),
			zap.String("actionType", string(activity.ActionType)),
			zap.Error(err),
		)
	}
}

// EmailSender delivers an email immediately, see mailer.Sender
type EmailSender interface {
	Send(ctx context.Context, email EmailPayload) error
}

type syncEmailDispatcher struct {
	sender EmailSender
	logger *zap.Logger
}

// NewSyncEmailDispatcher creates an EmailDispatcher that sends in the calling goroutine
func NewSyncEmailDispatcher(sender EmailSender, logger *zap.Logger) *syncEmailDispatcher {
	return &syncEmailDispatcher{sender: sender, logger: logger}
}

// DispatchEmail sends the email; failures are logged and dropped
func (d *syncEmailDispatcher) DispatchEmail(ctx context.Context, email EmailPayload) {
	if err := d.sender.Send(context.WithoutCancel(ctx), email); err != nil {
		d.logger.Error("failed to send email", zap.String("subject", email.Subject), zap.Error(err))
	}
}
