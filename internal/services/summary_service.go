package services

import (
	"context"
	"strings"
	"time"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/madaure/backend/libs/validation"
	"go.uber.org/zap"
)

// SummaryRepository is the interface that wraps methods for Summary table data access
type SummaryRepository interface {
	// Method List retrieves summaries, newest first.
	//
	// "subject" parameter filters by subject when not empty.
	List(ctx context.Context, subject string) ([]models.Summary, error)
	// Method GetByID retrieves a summary by ID.
	//
	// If summary with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Summary, error)
	// Method Create inserts a new summary; its ID is set on success.
	Create(ctx context.Context, summary *models.Summary) error
	// Method Delete deletes a summary. Lessons referencing it keep a dangling reference.
	Delete(ctx context.Context, id int) error
	// Method IncrementDownloads adds one to the download counter and returns the file URL.
	//
	// Please reference GetByID method for the error returned for unknown summaries.
	IncrementDownloads(ctx context.Context, id int) (string, error)
}

// summaryService implements summary management and downloads
type summaryService struct {
	repo   SummaryRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewSummaryService creates a new summary service
func NewSummaryService(repo SummaryRepository, logger *zap.Logger) *summaryService {
	return &summaryService{
		repo:   repo,
		logger: logger,
		now:    utcNow,
	}
}

// List returns summaries, optionally of one subject
func (s *summaryService) List(ctx context.Context, subject string) ([]models.Summary, error) {
	return s.repo.List(ctx, strings.TrimSpace(subject))
}

// Get returns one summary
func (s *summaryService) Get(ctx context.Context, id int) (*models.Summary, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a summary owned by teacherID
func (s *summaryService) Create(ctx context.Context, teacherID int, req models.CreateSummaryRequest) (*models.Summary, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	summary := &models.Summary{
		Title:     req.Title,
		Subject:   req.Subject,
		FileURL:   req.FileURL,
		TeacherID: teacherID,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, summary); err != nil {
		return nil, err
	}

	s.logger.Info("summary created", zap.Int("summaryId", summary.ID), zap.Int("teacherId", teacherID))
	return summary, nil
}

// Delete removes a summary; only the owning teacher or an admin may do it
func (s *summaryService) Delete(ctx context.Context, userID int, role models.Role, id int) error {
	summary, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(userID, role, summary.TeacherID) {
		return apperrors.Forbidden("Vous n'êtes pas l'auteur de ce résumé")
	}
	return s.repo.Delete(ctx, id)
}

// Download counts one download and returns the URL of the file
func (s *summaryService) Download(ctx context.Context, id int) (string, error) {
	return s.repo.IncrementDownloads(ctx, id)
}
