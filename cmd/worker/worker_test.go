package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRecorder struct {
	recorded []models.Activity
	err      error
}

func (m *mockRecorder) Record(ctx context.Context, activity models.Activity) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, activity)
	return nil
}

type mockSender struct {
	sent []events.EmailPayload
	err  error
}

func (m *mockSender) Send(ctx context.Context, email events.EmailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func TestWorker_HandleActivityRecord(t *testing.T) {
	activity := models.Activity{
		UserID:      7,
		ActionType:  models.ActionLessonCompleted,
		Description: "Leçon terminée : Les dérivées",
		CreatedAt:   time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC),
	}
	task, err := events.NewActivityTask(activity)
	require.NoError(t, err)

	tests := []struct {
		name          string
		task          *asynq.Task
		recorder      *mockRecorder
		expectedError bool
		skipRetry     bool
	}{
		{
			name:     "records the activity",
			task:     task,
			recorder: &mockRecorder{},
		},
		{
			name:          "malformed payload is not retried",
			task:          asynq.NewTask(events.TypeActivityRecord, []byte("{")),
			recorder:      &mockRecorder{},
			expectedError: true,
			skipRetry:     true,
		},
		{
			name:          "missing action type is not retried",
			task:          asynq.NewTask(events.TypeActivityRecord, []byte(`{"userId":7}`)),
			recorder:      &mockRecorder{},
			expectedError: true,
			skipRetry:     true,
		},
		{
			name:          "database error is retried",
			task:          task,
			recorder:      &mockRecorder{err: errors.New("connection refused")},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(zap.NewNop(), tt.recorder, &mockSender{})

			err := w.HandleActivityRecord(context.Background(), tt.task)

			if !tt.expectedError {
				require.NoError(t, err)
				require.Len(t, tt.recorder.recorded, 1)
				assert.Equal(t, activity.Description, tt.recorder.recorded[0].Description)
				assert.True(t, activity.CreatedAt.Equal(tt.recorder.recorded[0].CreatedAt))
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
			assert.Empty(t, tt.recorder.recorded)
		})
	}
}

func TestWorker_HandleNotificationEmail(t *testing.T) {
	email := events.EmailPayload{To: "yacine@example.dz", Subject: "Abonnement activé", Body: "<p>Bonjour</p>"}
	task, err := events.NewEmailTask(email)
	require.NoError(t, err)

	t.Run("sends the email", func(t *testing.T) {
		sender := &mockSender{}
		w := NewWorker(zap.NewNop(), &mockRecorder{}, sender)

		require.NoError(t, w.HandleNotificationEmail(context.Background(), task))
		assert.Equal(t, []events.EmailPayload{email}, sender.sent)
	})

	t.Run("missing recipient is not retried", func(t *testing.T) {
		w := NewWorker(zap.NewNop(), &mockRecorder{}, &mockSender{})

		err := w.HandleNotificationEmail(context.Background(), asynq.NewTask(events.TypeNotificationEmail, []byte(`{"subject":"x"}`)))

		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("smtp failure is retried", func(t *testing.T) {
		w := NewWorker(zap.NewNop(), &mockRecorder{}, &mockSender{err: errors.New("421 try again later")})

		err := w.HandleNotificationEmail(context.Background(), task)

		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestWorker_Register(t *testing.T) {
	recorder := &mockRecorder{}
	w := NewWorker(zap.NewNop(), recorder, &mockSender{})
	mux := asynq.NewServeMux()
	w.Register(mux)

	task, err := events.NewActivityTask(models.Activity{UserID: 7, ActionType: models.ActionLogin})
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Len(t, recorder.recorded, 1)
}
