package services

import (
	"context"
	"testing"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockThreadRepository is a mock implementation of ThreadRepository
type mockThreadRepository struct {
	threads  map[int]*models.Thread
	messages []*models.Message
	err      error
}

func newMockThreadRepository(threads ...*models.Thread) *mockThreadRepository {
	m := &mockThreadRepository{threads: map[int]*models.Thread{}}
	for _, t := range threads {
		m.threads[t.ID] = t
	}
	return m
}

func (m *mockThreadRepository) Create(ctx context.Context, thread *models.Thread, first *models.Message) error {
	if m.err != nil {
		return m.err
	}
	thread.ID = 61
	first.ThreadID = thread.ID
	first.ID = 1
	m.threads[thread.ID] = thread
	m.messages = append(m.messages, first)
	return nil
}

func (m *mockThreadRepository) GetByID(ctx context.Context, id int) (*models.Thread, error) {
	if t, ok := m.threads[id]; ok {
		return t, nil
	}
	return nil, apperrors.NotFound("Conversation non trouvée")
}

func (m *mockThreadRepository) ListByParticipant(ctx context.Context, userID int) ([]models.Thread, error) {
	var out []models.Thread
	for _, t := range m.threads {
		if t.HasParticipant(userID) {
			out = append(out, *t)
		}
	}
	return out, m.err
}

func (m *mockThreadRepository) ListMessages(ctx context.Context, threadID int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ThreadID == threadID {
			out = append(out, *msg)
		}
	}
	return out, m.err
}

func (m *mockThreadRepository) AddMessage(ctx context.Context, message *models.Message) error {
	if m.err != nil {
		return m.err
	}
	message.ID = len(m.messages) + 1
	m.messages = append(m.messages, message)
	return nil
}

func newTestThreadService(repo *mockThreadRepository, notifier *mockNotifier, emitter *mockEmitter) *threadService {
	svc := NewThreadService(repo, newMockUserRepository(student, teacher, admin), notifier, emitter, zap.NewNop())
	svc.now = fixedClock
	return svc
}

func TestThreadService_Create(t *testing.T) {
	tests := []struct {
		name          string
		req           models.CreateThreadRequest
		expectedField string
	}{
		{name: "with a teacher", req: models.CreateThreadRequest{TeacherID: 2, Subject: " Exercice 3 ", Body: "Je bloque"}},
		{name: "target is not a teacher", req: models.CreateThreadRequest{TeacherID: 1, Subject: "s", Body: "b"}, expectedField: "teacherId"},
		{name: "unknown teacher", req: models.CreateThreadRequest{TeacherID: 404, Subject: "s", Body: "b"}, expectedField: "teacherId"},
		{name: "blank body", req: models.CreateThreadRequest{TeacherID: 2, Subject: "s", Body: " "}, expectedField: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockThreadRepository()
			notifier := &mockNotifier{}
			emitter := &mockEmitter{}
			svc := newTestThreadService(repo, notifier, emitter)

			thread, err := svc.Create(context.Background(), 7, tt.req)

			if tt.expectedField != "" {
				var vErr *apperrors.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Contains(t, vErr.Fields, tt.expectedField)
				assert.Empty(t, repo.messages)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 61, thread.ID)
			assert.Equal(t, "Exercice 3", thread.Subject)
			assert.Equal(t, "Mme Benali", thread.TeacherName)
			require.Len(t, repo.messages, 1)
			assert.Equal(t, 61, repo.messages[0].ThreadID)

			require.Len(t, emitter.activities, 1)
			assert.Equal(t, models.ActionMessageSent, emitter.activities[0].ActionType)
			assert.Equal(t, "/messages/61", emitter.activities[0].Link)
			require.Len(t, notifier.sent, 1)
			assert.Equal(t, 2, notifier.sent[0].userID)
			assert.False(t, notifier.sent[0].sendEmail)
		})
	}
}

func TestThreadService_Send(t *testing.T) {
	tests := []struct {
		name              string
		userID            int
		threadID          int
		expectedRecipient int
		expectedError     error
	}{
		{name: "student writes to teacher", userID: 7, threadID: 3, expectedRecipient: 2},
		{name: "teacher answers student", userID: 2, threadID: 3, expectedRecipient: 7},
		{name: "outsider", userID: 1, threadID: 3, expectedError: apperrors.ErrForbidden},
		{name: "unknown thread", userID: 7, threadID: 4, expectedError: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockThreadRepository(&models.Thread{ID: 3, StudentID: 7, TeacherID: 2, Subject: "Suites"})
			notifier := &mockNotifier{}
			svc := newTestThreadService(repo, notifier, &mockEmitter{})

			message, err := svc.Send(context.Background(), tt.userID, tt.threadID, models.SendMessageRequest{Body: "Bonjour"})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, repo.messages)
				assert.Empty(t, notifier.sent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.userID, message.SenderID)
			assert.Equal(t, fixedNow, message.CreatedAt)
			require.Len(t, notifier.sent, 1)
			assert.Equal(t, tt.expectedRecipient, notifier.sent[0].userID)
			assert.Equal(t, "/messages/3", notifier.sent[0].notification.Link)
		})
	}
}

func TestThreadService_Messages(t *testing.T) {
	repo := newMockThreadRepository(&models.Thread{ID: 3, StudentID: 7, TeacherID: 2})
	repo.messages = []*models.Message{{ID: 1, ThreadID: 3, SenderID: 7}, {ID: 2, ThreadID: 3, SenderID: 2}}
	svc := newTestThreadService(repo, &mockNotifier{}, &mockEmitter{})

	messages, err := svc.Messages(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	_, err = svc.Messages(context.Background(), 1, 3)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestThreadService_List(t *testing.T) {
	repo := newMockThreadRepository(
		&models.Thread{ID: 3, StudentID: 7, TeacherID: 2},
		&models.Thread{ID: 4, StudentID: 8, TeacherID: 2},
	)
	svc := newTestThreadService(repo, &mockNotifier{}, &mockEmitter{})

	threads, err := svc.List(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 3, threads[0].ID)
}
