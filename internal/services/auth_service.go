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
	"golang.org/x/crypto/bcrypt"
)

// MessageInvalidCredentials is returned for an unknown email or a wrong password
const MessageInvalidCredentials = "Identifiants invalides"

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user; its ID is set on success.
	//
	// If the email is already used, a validation error on the "email" field will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// "email" parameter is used to retrieve a user by email.
	//
	// If user with such email does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer is the interface that wraps access token generation
type TokenIssuer interface {
	// Method GenerateAccessToken creates a signed access token for a user.
	GenerateAccessToken(userID int, role string) (string, error)
}

// authService implements registration and login
type authService struct {
	userRepo UserRepository
	tokens   TokenIssuer
	emitter  events.Emitter
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokens TokenIssuer, emitter events.Emitter, logger *zap.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		emitter:  emitter,
		logger:   logger,
		now:      utcNow,
	}
}

// Register creates a student account and returns it with an access token
//
// The email is stored lowercased. Locale defaults to "fr".
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Branch = strings.TrimSpace(req.Branch)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	locale := req.Locale
	if locale == "" {
		locale = models.LocaleFR
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Branch:       req.Branch,
		Locale:       locale,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	response, err := s.authResponse(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID))
	s.emitter.Emit(ctx, models.Activity{
		UserID:      user.ID,
		UserName:    user.Name,
		Role:        user.Role,
		ActionType:  models.ActionRegister,
		Description: "Inscription",
		Link:        "/profile",
	})

	return response, nil
}

// Login checks credentials and returns the user with a fresh access token
//
// Unknown emails and wrong passwords produce the same unauthorized error and no activity.
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unauthorized(MessageInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.Int("userId", user.ID))
		return nil, apperrors.Unauthorized(MessageInvalidCredentials)
	}

	response, err := s.authResponse(user)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, models.Activity{
		UserID:      user.ID,
		UserName:    user.Name,
		Role:        user.Role,
		ActionType:  models.ActionLogin,
		Description: "Connexion",
	})

	return response, nil
}

func (s *authService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &models.AuthResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Branch: user.Branch,
		Token:  token,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
