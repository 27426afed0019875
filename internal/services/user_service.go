package services

import (
	"context"

	"github.com/madaure/backend/internal/models"
	"go.uber.org/zap"
)

// TeacherRepository is the interface that wraps the teacher directory
type TeacherRepository interface {
	UserLookup
	// Method ListTeachers retrieves every teacher ordered by name.
	ListTeachers(ctx context.Context) ([]models.TeacherListItem, error)
}

// userService implements profile and directory reads
type userService struct {
	repo   TeacherRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo TeacherRepository, logger *zap.Logger) *userService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// Me returns the profile of the authenticated user
func (s *userService) Me(ctx context.Context, userID int) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// ListTeachers returns the public teacher directory
func (s *userService) ListTeachers(ctx context.Context) ([]models.TeacherListItem, error) {
	return s.repo.ListTeachers(ctx)
}
