package services

import (
	"context"
	"errors"
	"testing"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// mockTokenIssuer is a mock implementation of TokenIssuer
type mockTokenIssuer struct {
	err error
}

func (m *mockTokenIssuer) GenerateAccessToken(userID int, role string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "token-" + role, nil
}

func TestNewAuthService(t *testing.T) {
	logger := zap.NewNop()
	repo := newMockUserRepository()
	tokens := &mockTokenIssuer{}
	emitter := &mockEmitter{}

	svc := NewAuthService(repo, tokens, emitter, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.userRepo)
	assert.Equal(t, tokens, svc.tokens)
	assert.Equal(t, emitter, svc.emitter)
	assert.Equal(t, logger, svc.logger)
}

func TestAuthService_Register(t *testing.T) {
	validRequest := models.RegisterRequest{
		Name:     "  Amina  ",
		Email:    " Amina@Example.DZ ",
		Password: "motdepasse123",
		Branch:   "Sciences",
	}

	tests := []struct {
		name          string
		req           models.RegisterRequest
		repo          *mockUserRepository
		tokens        *mockTokenIssuer
		expectedError error
		errorField    string
		validate      func(*testing.T, *models.AuthResponse, *mockUserRepository, *mockEmitter)
	}{
		{
			name:   "success",
			req:    validRequest,
			repo:   newMockUserRepository(),
			tokens: &mockTokenIssuer{},
			validate: func(t *testing.T, resp *models.AuthResponse, repo *mockUserRepository, emitter *mockEmitter) {
				assert.Equal(t, "Amina", resp.Name)
				assert.Equal(t, "amina@example.dz", resp.Email)
				assert.Equal(t, models.RoleStudent, resp.Role)
				assert.Equal(t, "token-student", resp.Token)

				require.Len(t, repo.created, 1)
				created := repo.created[0]
				assert.Equal(t, models.LocaleFR, created.Locale)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("motdepasse123")))

				require.Len(t, emitter.activities, 1)
				assert.Equal(t, models.ActionRegister, emitter.activities[0].ActionType)
				assert.Equal(t, created.ID, emitter.activities[0].UserID)
			},
		},
		{
			name:          "short password",
			req:           models.RegisterRequest{Name: "Amina", Email: "amina@example.dz", Password: "court"},
			repo:          newMockUserRepository(),
			tokens:        &mockTokenIssuer{},
			expectedError: apperrors.ErrValidation,
			errorField:    "password",
		},
		{
			name:          "invalid email",
			req:           models.RegisterRequest{Name: "Amina", Email: "pas-un-email", Password: "motdepasse123"},
			repo:          newMockUserRepository(),
			tokens:        &mockTokenIssuer{},
			expectedError: apperrors.ErrValidation,
			errorField:    "email",
		},
		{
			name:          "unsupported locale",
			req:           models.RegisterRequest{Name: "Amina", Email: "amina@example.dz", Password: "motdepasse123", Locale: "de"},
			repo:          newMockUserRepository(),
			tokens:        &mockTokenIssuer{},
			expectedError: apperrors.ErrValidation,
			errorField:    "locale",
		},
		{
			name: "duplicate email",
			req:  validRequest,
			repo: func() *mockUserRepository {
				r := newMockUserRepository()
				r.createErr = apperrors.InvalidField("email", "cet email est déjà utilisé")
				return r
			}(),
			tokens:        &mockTokenIssuer{},
			expectedError: apperrors.ErrValidation,
			errorField:    "email",
		},
		{
			name:          "token failure",
			req:           validRequest,
			repo:          newMockUserRepository(),
			tokens:        &mockTokenIssuer{err: errors.New("no key")},
			expectedError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitter := &mockEmitter{}
			svc := NewAuthService(tt.repo, tt.tokens, emitter, zap.NewNop())

			resp, err := svc.Register(context.Background(), tt.req)

			if tt.tokens.err != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to generate access token")
				assert.Empty(t, emitter.activities)
				return
			}
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				var vErr *apperrors.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Contains(t, vErr.Fields, tt.errorField)
				assert.Nil(t, resp)
				assert.Empty(t, emitter.activities)
				return
			}
			require.NoError(t, err)
			tt.validate(t, resp, tt.repo, emitter)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("motdepasse123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: 7, Name: "Yacine", Email: "yacine@example.dz", PasswordHash: string(hash), Role: models.RoleStudent}

	tests := []struct {
		name          string
		req           models.LoginRequest
		repo          *mockUserRepository
		expectedError error
	}{
		{
			name: "success with different email case",
			req:  models.LoginRequest{Email: "Yacine@Example.dz", Password: "motdepasse123"},
			repo: newMockUserRepository(user),
		},
		{
			name:          "wrong password",
			req:           models.LoginRequest{Email: "yacine@example.dz", Password: "mauvais"},
			repo:          newMockUserRepository(user),
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:          "unknown email",
			req:           models.LoginRequest{Email: "ghost@example.dz", Password: "motdepasse123"},
			repo:          newMockUserRepository(user),
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:          "missing password",
			req:           models.LoginRequest{Email: "yacine@example.dz"},
			repo:          newMockUserRepository(user),
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitter := &mockEmitter{}
			svc := NewAuthService(tt.repo, &mockTokenIssuer{}, emitter, zap.NewNop())

			resp, err := svc.Login(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
				assert.Empty(t, emitter.activities, "failed logins must not be logged as activity")
				if errors.Is(err, apperrors.ErrUnauthorized) {
					assert.Equal(t, MessageInvalidCredentials, apperrors.PublicMessage(err))
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 7, resp.ID)
			assert.Equal(t, "token-student", resp.Token)
			require.Len(t, emitter.activities, 1)
			assert.Equal(t, models.ActionLogin, emitter.activities[0].ActionType)
		})
	}
}

func TestUserService(t *testing.T) {
	repo := newMockUserRepository(student, teacher)
	repo.teachers = []models.TeacherListItem{{ID: 2, Name: "Mme Benali"}}
	svc := NewUserService(repo, zap.NewNop())

	me, err := svc.Me(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Yacine", me.Name)

	_, err = svc.Me(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	teachers, err := svc.ListTeachers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo.teachers, teachers)
}
