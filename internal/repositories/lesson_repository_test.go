package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupLessonTestRepository creates a lesson repository with a mock database
func setupLessonTestRepository(t *testing.T) (*lessonRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewLessonRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var lessonHeaderColumns = []string{
	"id", "title", "description", "subject", "teacher_id", "name",
	"is_live", "start_time", "duration", "status", "created_at", "updated_at",
}

func TestNewLessonRepository(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	db := &sql.DB{}

	repo := NewLessonRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestLessonRepository_GetByID(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		errorContains string
		validate      func(*testing.T, *models.Lesson)
	}{
		{
			name: "success with blocks in order",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM lessons l")).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows(lessonHeaderColumns).
						AddRow(5, "Suites", "Suites numériques", "Mathématiques", 2, "Mme Benali", false, nil, 45, "published", now, now))
				mock.ExpectQuery(regexp.QuoteMeta("FROM lesson_blocks")).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows([]string{"block_order", "block_type", "title", "block_data"}).
						AddRow(1, "video", "Intro", `{"url":"https://youtu.be/abc"}`).
						AddRow(2, "summary-ref", "Fiche", `{"summaryId":3}`))
			},
			validate: func(t *testing.T, lesson *models.Lesson) {
				assert.Equal(t, 5, lesson.ID)
				assert.Equal(t, "Mme Benali", lesson.TeacherName)
				assert.Nil(t, lesson.StartTime)
				require.Len(t, lesson.Content, 2)
				assert.Equal(t, 1, lesson.Content[0].Order)
				assert.Equal(t, models.VideoBlock{Title: "Intro", Data: models.VideoData{URL: "https://youtu.be/abc"}}, lesson.Content[0].Block)
				assert.Equal(t, models.SummaryRefBlock{Title: "Fiche", Data: models.SummaryRefData{SummaryID: 3}}, lesson.Content[1].Block)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM lessons l")).
					WithArgs(5).
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name: "stored block with unknown type",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM lessons l")).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows(lessonHeaderColumns).
						AddRow(5, "Suites", "", "Mathématiques", 2, "Mme Benali", true, now, 45, "published", now, now))
				mock.ExpectQuery(regexp.QuoteMeta("FROM lesson_blocks")).
					WithArgs(5).
					WillReturnRows(sqlmock.NewRows([]string{"block_order", "block_type", "title", "block_data"}).
						AddRow(1, "podcast", "Audio", `{}`))
			},
			errorContains: "failed to decode lesson block 1 of lesson 5",
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM lessons l")).
					WithArgs(5).
					WillReturnError(errors.New("connection reset"))
			},
			errorContains: "failed to get lesson by id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			lesson, err := repo.GetByID(context.Background(), 5)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, lesson)
			case tt.errorContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			default:
				require.NoError(t, err)
				tt.validate(t, lesson)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonRepository_List(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	now := time.Now()
	status := models.LessonStatusPublished
	filter := models.LessonFilter{Subject: "Physique", Status: &status, Page: 2, Count: 10}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.subject = ? AND l.status = ? ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?")).
		WithArgs("Physique", "published", 10, 10).
		WillReturnRows(sqlmock.NewRows(lessonHeaderColumns[:11]).
			AddRow(9, "Ondes", "", "Physique", 3, "M. Haddad", true, now, 60, "published", now))

	lessons, err := repo.List(context.Background(), filter)

	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Ondes", lessons[0].Title)
	require.NotNil(t, lessons[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_List_PublishedOnly(t *testing.T) {
	tests := []struct {
		name          string
		filter        models.LessonFilter
		expectedWhere string
		expectedArgs  []driver.Value
	}{
		{
			name:          "anonymous viewer",
			filter:        models.LessonFilter{PublishedOnly: true, Page: 1, Count: 20},
			expectedWhere: "WHERE l.status = ? ORDER BY",
			expectedArgs:  []driver.Value{"published", 20, 0},
		},
		{
			name:          "teacher keeps own lessons",
			filter:        models.LessonFilter{Subject: "Maths", PublishedOnly: true, ViewerID: 2, Page: 1, Count: 20},
			expectedWhere: "WHERE l.subject = ? AND (l.status = ? OR l.teacher_id = ?) ORDER BY",
			expectedArgs:  []driver.Value{"Maths", "published", 2, 20, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonTestRepository(t)
			defer cleanup()

			mock.ExpectQuery(regexp.QuoteMeta(tt.expectedWhere)).
				WithArgs(tt.expectedArgs...).
				WillReturnRows(sqlmock.NewRows(lessonHeaderColumns[:11]))

			lessons, err := repo.List(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Empty(t, lessons)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	now := time.Now()
	lesson := &models.Lesson{
		Title:     "Suites",
		Subject:   "Mathématiques",
		TeacherID: 2,
		Status:    models.LessonStatusPublished,
		Content: []models.ContentBlock{
			{Order: 7, Block: models.TextBlock{Title: "Cours", Data: models.TextData{Body: "u(n+1) = u(n) + r"}}},
			{Order: 3, Block: models.SummaryRefBlock{Title: "Fiche", Data: models.SummaryRefData{SummaryID: 4}}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lessons")).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_blocks")).
		WithArgs(11, 1, "text", "Cours", `{"body":"u(n+1) = u(n) + r"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_blocks")).
		WithArgs(11, 2, "summary-ref", "Fiche", `{"summaryId":4}`).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), lesson)

	require.NoError(t, err)
	assert.Equal(t, 11, lesson.ID)
	assert.Equal(t, 1, lesson.Content[0].Order)
	assert.Equal(t, 2, lesson.Content[1].Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_Create_RollsBackOnBlockFailure(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	lesson := &models.Lesson{
		Title:   "Suites",
		Content: []models.ContentBlock{{Block: models.TextBlock{Title: "Cours"}}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lessons")).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_blocks")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), lesson)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create lesson block")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_Update_NotFound(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Lesson{ID: 99})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_InsertBlock(t *testing.T) {
	block := models.TextBlock{Title: "Rappel", Data: models.TextData{Body: "..."}}

	tests := []struct {
		name          string
		position      int
		count         int
		expectedOrder int
		shifts        bool
	}{
		{name: "insert in the middle shifts later blocks", position: 2, count: 3, expectedOrder: 2, shifts: true},
		{name: "insert at the start", position: 1, count: 3, expectedOrder: 1, shifts: true},
		{name: "zero position appends", position: 0, count: 3, expectedOrder: 4},
		{name: "position past the end appends", position: 10, count: 3, expectedOrder: 4},
		{name: "first block of an empty lesson", position: 0, count: 0, expectedOrder: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonTestRepository(t)
			defer cleanup()

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM lessons WHERE id = ? FOR UPDATE")).
				WithArgs(5).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lesson_blocks")).
				WithArgs(5).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))
			if tt.shifts {
				mock.ExpectExec(regexp.QuoteMeta("SET block_order = block_order + 1")).
					WithArgs(5, tt.expectedOrder).
					WillReturnResult(sqlmock.NewResult(0, int64(tt.count-tt.expectedOrder+1)))
			}
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_blocks")).
				WithArgs(5, tt.expectedOrder, "text", "Rappel", `{"body":"..."}`).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons SET updated_at = ?")).
				WithArgs(sqlmock.AnyArg(), 5).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			order, err := repo.InsertBlock(context.Background(), 5, tt.position, block, time.Now())

			require.NoError(t, err)
			assert.Equal(t, tt.expectedOrder, order)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLessonRepository_InsertBlock_LessonNotFound(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(5).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.InsertBlock(context.Background(), 5, 1, models.TextBlock{Title: "x"}, time.Now())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_DeleteBlock(t *testing.T) {
	t.Run("closes the gap", func(t *testing.T) {
		repo, mock, cleanup := setupLessonTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lesson_blocks WHERE lesson_id = ?")).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lesson_blocks WHERE lesson_id = ? AND block_order = ?")).
			WithArgs(5, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("SET block_order = block_order - 1 WHERE lesson_id = ? AND block_order > ?")).
			WithArgs(5, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons SET updated_at = ?")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteBlock(context.Background(), 5, 2, time.Now())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	tests := []struct {
		name          string
		order         int
		count         int
		expectedError error
	}{
		{name: "order past the end", order: 9, count: 2, expectedError: apperrors.ErrNotFound},
		{name: "order zero", order: 0, count: 2, expectedError: apperrors.ErrNotFound},
		{name: "last block is kept", order: 1, count: 1, expectedError: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupLessonTestRepository(t)
			defer cleanup()

			// The count is read after the lock and nothing is deleted
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(5).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
			mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lesson_blocks WHERE lesson_id = ?")).WithArgs(5).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))
			mock.ExpectRollback()

			err := repo.DeleteBlock(context.Background(), 5, tt.order, time.Now())

			assert.ErrorIs(t, err, tt.expectedError)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("missing lesson", func(t *testing.T) {
		repo, mock, cleanup := setupLessonTestRepository(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(5).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.DeleteBlock(context.Background(), 5, 1, time.Now())

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLessonRepository_GetBlock(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM lesson_blocks")).
		WithArgs(5, 3).
		WillReturnRows(sqlmock.NewRows([]string{"block_type", "title", "block_data"}).
			AddRow("quiz", "Contrôle", `{"questions":[{"questionText":"2+2 ?","options":[{"text":"3","isCorrect":false},{"text":"4","isCorrect":true}]}]}`))
	mock.ExpectQuery(regexp.QuoteMeta("FROM lesson_blocks")).
		WithArgs(5, 4).
		WillReturnError(sql.ErrNoRows)

	cb, err := repo.GetBlock(context.Background(), 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cb.Order)
	quiz, ok := cb.Block.(models.QuizBlock)
	require.True(t, ok)
	require.Len(t, quiz.Data.Questions, 1)
	assert.True(t, quiz.Data.Questions[0].Options[1].IsCorrect)

	_, err = repo.GetBlock(context.Background(), 5, 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_MarkCompleted(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO lesson_completions")).
		WithArgs(7, 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO lesson_completions")).
		WithArgs(7, 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.MarkCompleted(context.Background(), 7, 5, time.Now())
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkCompleted(context.Background(), 7, 5, time.Now())
	require.NoError(t, err)
	assert.False(t, again)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepository_Search(t *testing.T) {
	repo, mock, cleanup := setupLessonTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons")).
		WithArgs("published", "%50\\%%", "%50\\%%", "%50\\%%", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "subject"}).AddRow(1, "Réduction de 50%", "Économie"))

	hits, err := repo.Search(context.Background(), "50%", 5)

	require.NoError(t, err)
	assert.Equal(t, []models.SearchHit{{ID: 1, Title: "Réduction de 50%", Subject: "Économie"}}, hits)
	assert.NoError(t, mock.ExpectationsWereMet())
}
