package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxQueryLength bounds the search text
const maxQueryLength = 100

// ContentSearcher is the interface that wraps substring search over titles and subjects
type ContentSearcher interface {
	// Method Search retrieves at most "limit" entries matching q.
	//
	// "q" parameter is matched case-insensitively as a substring; LIKE wildcards in it are literal.
	Search(ctx context.Context, q string, limit int) ([]models.SearchHit, error)
}

// TeacherSearcher is the interface that wraps teacher search by name
type TeacherSearcher interface {
	// Method SearchTeachers retrieves at most "limit" teachers whose name contains q.
	SearchTeachers(ctx context.Context, q string, limit int) ([]models.SearchHit, error)
}

// searchService implements the cross-entity search
type searchService struct {
	lessons   ContentSearcher
	summaries ContentSearcher
	quizzes   ContentSearcher
	teachers  TeacherSearcher
	logger    *zap.Logger
}

// NewSearchService creates a new search service
func NewSearchService(lessons, summaries, quizzes ContentSearcher, teachers TeacherSearcher, logger *zap.Logger) *searchService {
	return &searchService{
		lessons:   lessons,
		summaries: summaries,
		quizzes:   quizzes,
		teachers:  teachers,
		logger:    logger,
	}
}

// Search looks q up in lessons, summaries, quizzes and teachers concurrently
//
// Every list holds at most models.SearchResultLimit entries. A blank query is rejected.
func (s *searchService) Search(ctx context.Context, q string) (*models.SearchResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperrors.InvalidField("q", "q est obligatoire")
	}
	if utf8.RuneCountInString(q) > maxQueryLength {
		return nil, apperrors.InvalidField("q", "q est trop long")
	}

	response := &models.SearchResponse{Query: q}
	limit := models.SearchResultLimit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		response.Lessons, err = s.lessons.Search(gctx, q, limit)
		return err
	})
	g.Go(func() (err error) {
		response.Summaries, err = s.summaries.Search(gctx, q, limit)
		return err
	})
	g.Go(func() (err error) {
		response.Quizzes, err = s.quizzes.Search(gctx, q, limit)
		return err
	})
	g.Go(func() (err error) {
		response.Teachers, err = s.teachers.SearchTeachers(gctx, q, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("search failed", zap.String("q", q), zap.Error(err))
		return nil, err
	}
	return response, nil
}
