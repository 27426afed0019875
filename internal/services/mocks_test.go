package services

import (
	"context"
	"sync"
	"time"

	"github.com/madaure/backend/internal/events"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
)

var fixedNow = time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// mockEmitter is a mock implementation of events.Emitter recording every activity
type mockEmitter struct {
	mu         sync.Mutex
	activities []models.Activity
}

func (m *mockEmitter) Emit(ctx context.Context, activity models.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, activity)
}

// mockEmailDispatcher is a mock implementation of events.EmailDispatcher
type mockEmailDispatcher struct {
	emails []events.EmailPayload
}

func (m *mockEmailDispatcher) DispatchEmail(ctx context.Context, email events.EmailPayload) {
	m.emails = append(m.emails, email)
}

// sentNotification is one call of mockNotifier.Notify
type sentNotification struct {
	userID       int
	notification models.Notification
	sendEmail    bool
}

// mockNotifier is a mock implementation of Notifier
type mockNotifier struct {
	sent []sentNotification
	err  error
}

func (m *mockNotifier) Notify(ctx context.Context, userID int, n models.Notification, sendEmail bool) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentNotification{userID: userID, notification: n, sendEmail: sendEmail})
	return nil
}

// mockUserRepository is a mock implementation of the user repository interfaces
type mockUserRepository struct {
	users     map[int]*models.User
	teachers  []models.TeacherListItem
	roleIDs   []int
	hits      []models.SearchHit
	createErr error
	getErr    error
	created   []*models.User
	nextID    int
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[int]*models.User{}, nextID: 100}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("Utilisateur non trouvé")
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("Utilisateur non trouvé")
}

func (m *mockUserRepository) ListTeachers(ctx context.Context) ([]models.TeacherListItem, error) {
	return m.teachers, m.getErr
}

func (m *mockUserRepository) ListIDsByRole(ctx context.Context, role models.Role) ([]int, error) {
	return m.roleIDs, m.getErr
}

func (m *mockUserRepository) SearchTeachers(ctx context.Context, q string, limit int) ([]models.SearchHit, error) {
	return m.hits, m.getErr
}

var (
	student = &models.User{ID: 7, Name: "Yacine", Email: "yacine@example.dz", Role: models.RoleStudent, Locale: models.LocaleFR}
	teacher = &models.User{ID: 2, Name: "Mme Benali", Email: "benali@example.dz", Role: models.RoleTeacher, Locale: models.LocaleFR}
	admin   = &models.User{ID: 1, Name: "Admin", Email: "admin@example.dz", Role: models.RoleAdmin, Locale: models.LocaleFR}
)
