package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

type lessonRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB, logger *zap.Logger) *lessonRepository {
	return &lessonRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves lessons without content, newest first, with filtering and pagination
func (r *lessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.LessonListItem, error) {
	var where []string
	var args []any

	if filter.Subject != "" {
		where = append(where, "l.subject = ?")
		args = append(args, filter.Subject)
	}
	if filter.TeacherID != nil {
		where = append(where, "l.teacher_id = ?")
		args = append(args, *filter.TeacherID)
	}
	if filter.Status != nil {
		where = append(where, "l.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.IsLive != nil {
		where = append(where, "l.is_live = ?")
		args = append(args, *filter.IsLive)
	}
	if filter.PublishedOnly {
		if filter.ViewerID > 0 {
			where = append(where, "(l.status = ? OR l.teacher_id = ?)")
			args = append(args, models.LessonStatusPublished, filter.ViewerID)
		} else {
			where = append(where, "l.status = ?")
			args = append(args, models.LessonStatusPublished)
		}
	}

	query := `
		SELECT l.id, l.title, l.description, l.subject, l.teacher_id, u.name,
			l.is_live, l.start_time, l.duration, l.status, l.created_at
		FROM lessons l
		JOIN users u ON u.id = l.teacher_id
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Count, pageOffset(filter.Page, filter.Count))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.LessonListItem{}
	for rows.Next() {
		var lesson models.LessonListItem
		var startTime sql.NullTime
		err := rows.Scan(
			&lesson.ID,
			&lesson.Title,
			&lesson.Description,
			&lesson.Subject,
			&lesson.TeacherID,
			&lesson.TeacherName,
			&lesson.IsLive,
			&startTime,
			&lesson.Duration,
			&lesson.Status,
			&lesson.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		if startTime.Valid {
			lesson.StartTime = &startTime.Time
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// GetByID retrieves a lesson with its content blocks in display order
func (r *lessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	query := `
		SELECT l.id, l.title, l.description, l.subject, l.teacher_id, u.name,
			l.is_live, l.start_time, l.duration, l.status, l.created_at, l.updated_at
		FROM lessons l
		JOIN users u ON u.id = l.teacher_id
		WHERE l.id = ?
		LIMIT 1
	`

	var lesson models.Lesson
	var startTime sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.Title,
		&lesson.Description,
		&lesson.Subject,
		&lesson.TeacherID,
		&lesson.TeacherName,
		&lesson.IsLive,
		&startTime,
		&lesson.Duration,
		&lesson.Status,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(models.MessageLessonNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get lesson by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}
	if startTime.Valid {
		lesson.StartTime = &startTime.Time
	}

	lesson.Content, err = r.getBlocks(ctx, id)
	if err != nil {
		return nil, err
	}

	return &lesson, nil
}

// getBlocks retrieves all blocks of a lesson, sorted by order
func (r *lessonRepository) getBlocks(ctx context.Context, lessonID int) ([]models.ContentBlock, error) {
	query := `
		SELECT block_order, block_type, title, block_data
		FROM lesson_blocks
		WHERE lesson_id = ?
		ORDER BY block_order
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson blocks: %w", err)
	}
	defer rows.Close()

	blocks := []models.ContentBlock{}
	for rows.Next() {
		var (
			order     int
			blockType models.BlockType
			title     string
			blockData string
		)
		if err := rows.Scan(&order, &blockType, &title, &blockData); err != nil {
			return nil, fmt.Errorf("failed to scan lesson block: %w", err)
		}
		block, err := models.DecodeBlock(blockType, title, json.RawMessage(blockData))
		if err != nil {
			return nil, fmt.Errorf("failed to decode lesson block %d of lesson %d: %w", order, lessonID, err)
		}
		blocks = append(blocks, models.ContentBlock{Order: order, Block: block})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return blocks, nil
}

// Create inserts a lesson and its blocks in one transaction
//
// Block orders are assigned 1..N from the slice order.
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		query := `
			INSERT INTO lessons (title, description, subject, teacher_id, is_live, start_time, duration, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		result, err := tx.ExecContext(ctx, query,
			lesson.Title,
			lesson.Description,
			lesson.Subject,
			lesson.TeacherID,
			lesson.IsLive,
			lesson.StartTime,
			lesson.Duration,
			lesson.Status,
			lesson.CreatedAt,
			lesson.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create lesson: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		lesson.ID = int(id)

		return insertBlocks(ctx, tx, lesson.ID, lesson.Content)
	})
}

// Update replaces the fields and the whole content of a lesson in one transaction
func (r *lessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	return withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		query := `
			UPDATE lessons
			SET title = ?, description = ?, subject = ?, is_live = ?, start_time = ?, duration = ?, status = ?, updated_at = ?
			WHERE id = ?
		`

		result, err := tx.ExecContext(ctx, query,
			lesson.Title,
			lesson.Description,
			lesson.Subject,
			lesson.IsLive,
			lesson.StartTime,
			lesson.Duration,
			lesson.Status,
			lesson.UpdatedAt,
			lesson.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update lesson: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperrors.NotFound(models.MessageLessonNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM lesson_blocks WHERE lesson_id = ?`, lesson.ID); err != nil {
			return fmt.Errorf("failed to delete lesson blocks: %w", err)
		}

		return insertBlocks(ctx, tx, lesson.ID, lesson.Content)
	})
}

// insertBlocks inserts blocks with orders 1..N and writes the assigned order back
func insertBlocks(ctx context.Context, tx *sql.Tx, lessonID int, blocks []models.ContentBlock) error {
	query := `
		INSERT INTO lesson_blocks (lesson_id, block_order, block_type, title, block_data)
		VALUES (?, ?, ?, ?, ?)
	`

	for i := range blocks {
		blocks[i].Order = i + 1
		if err := insertBlock(ctx, tx, query, lessonID, blocks[i]); err != nil {
			return err
		}
	}
	return nil
}

func insertBlock(ctx context.Context, tx *sql.Tx, query string, lessonID int, cb models.ContentBlock) error {
	data, err := models.EncodeBlockData(cb.Block)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, lessonID, cb.Order, cb.Block.Type(), cb.Block.Heading(), string(data))
	if err != nil {
		return fmt.Errorf("failed to create lesson block: %w", err)
	}
	return nil
}

// Delete deletes a lesson; blocks and completions cascade
func (r *lessonRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.NotFound(models.MessageLessonNotFound)
	}

	return nil
}

// lockLesson takes a row lock on the lesson so concurrent block edits are serialized
func lockLesson(ctx context.Context, tx *sql.Tx, lessonID int) error {
	var id int
	err := tx.QueryRowContext(ctx, `SELECT id FROM lessons WHERE id = ? FOR UPDATE`, lessonID).Scan(&id)
	if err == sql.ErrNoRows {
		return apperrors.NotFound(models.MessageLessonNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock lesson: %w", err)
	}
	return nil
}

// InsertBlock inserts a block at a 1-based position, shifting later blocks down
//
// A position of 0 or past the end appends. Returns the order assigned to the block.
func (r *lessonRepository) InsertBlock(ctx context.Context, lessonID, position int, block models.Block, updatedAt time.Time) (int, error) {
	var order int
	err := withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		if err := lockLesson(ctx, tx, lessonID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lesson_blocks WHERE lesson_id = ?`, lessonID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count lesson blocks: %w", err)
		}

		order = position
		if order <= 0 || order > count {
			order = count + 1
		} else {
			// Increment order for all blocks with order >= new order
			shift := `UPDATE lesson_blocks SET block_order = block_order + 1 WHERE lesson_id = ? AND block_order >= ?`
			if _, err := tx.ExecContext(ctx, shift, lessonID, order); err != nil {
				return fmt.Errorf("failed to increment block order: %w", err)
			}
		}

		query := `
			INSERT INTO lesson_blocks (lesson_id, block_order, block_type, title, block_data)
			VALUES (?, ?, ?, ?, ?)
		`
		if err := insertBlock(ctx, tx, query, lessonID, models.ContentBlock{Order: order, Block: block}); err != nil {
			return err
		}

		return touchLesson(ctx, tx, lessonID, updatedAt)
	})
	if err != nil {
		return 0, err
	}
	return order, nil
}

// DeleteBlock deletes the block at order and closes the gap so orders stay 1..N
//
// The block count is read under the lesson lock: an order outside 1..N is not found
// and the last block of a lesson is never deleted.
func (r *lessonRepository) DeleteBlock(ctx context.Context, lessonID, order int, updatedAt time.Time) error {
	return withTx(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		if err := lockLesson(ctx, tx, lessonID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lesson_blocks WHERE lesson_id = ?`, lessonID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count lesson blocks: %w", err)
		}
		if order < 1 || order > count {
			return apperrors.NotFound(models.MessageBlockNotFound)
		}
		if count == 1 {
			return apperrors.InvalidField("content", models.MessageLastBlock)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM lesson_blocks WHERE lesson_id = ? AND block_order = ?`, lessonID, order)
		if err != nil {
			return fmt.Errorf("failed to delete lesson block: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperrors.NotFound(models.MessageBlockNotFound)
		}

		shift := `UPDATE lesson_blocks SET block_order = block_order - 1 WHERE lesson_id = ? AND block_order > ?`
		if _, err := tx.ExecContext(ctx, shift, lessonID, order); err != nil {
			return fmt.Errorf("failed to decrement block order: %w", err)
		}

		return touchLesson(ctx, tx, lessonID, updatedAt)
	})
}

func touchLesson(ctx context.Context, tx *sql.Tx, lessonID int, updatedAt time.Time) error {
	if _, err := tx.ExecContext(ctx, `UPDATE lessons SET updated_at = ? WHERE id = ?`, updatedAt, lessonID); err != nil {
		return fmt.Errorf("failed to touch lesson: %w", err)
	}
	return nil
}

// GetBlock retrieves the block at order in a lesson
func (r *lessonRepository) GetBlock(ctx context.Context, lessonID, order int) (*models.ContentBlock, error) {
	query := `
		SELECT block_type, title, block_data
		FROM lesson_blocks
		WHERE lesson_id = ? AND block_order = ?
		LIMIT 1
	`

	var (
		blockType models.BlockType
		title     string
		blockData string
	)
	err := r.db.QueryRowContext(ctx, query, lessonID, order).Scan(&blockType, &title, &blockData)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(models.MessageBlockNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson block: %w", err)
	}

	block, err := models.DecodeBlock(blockType, title, json.RawMessage(blockData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode lesson block: %w", err)
	}
	return &models.ContentBlock{Order: order, Block: block}, nil
}

// GetOwnerID retrieves the teacher ID of a lesson
func (r *lessonRepository) GetOwnerID(ctx context.Context, id int) (int, error) {
	var teacherID int
	err := r.db.QueryRowContext(ctx, `SELECT teacher_id FROM lessons WHERE id = ? LIMIT 1`, id).Scan(&teacherID)
	if err == sql.ErrNoRows {
		return 0, apperrors.NotFound(models.MessageLessonNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get lesson owner: %w", err)
	}
	return teacherID, nil
}

// MarkCompleted records a completion; returns false when the lesson was already completed
func (r *lessonRepository) MarkCompleted(ctx context.Context, userID, lessonID int, completedAt time.Time) (bool, error) {
	query := `INSERT IGNORE INTO lesson_completions (user_id, lesson_id, completed_at) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, userID, lessonID, completedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark lesson completed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// Search retrieves published lessons whose title, description or subject contains q
func (r *lessonRepository) Search(ctx context.Context, q string, limit int) ([]models.SearchHit, error) {
	query := `
		SELECT id, title, subject
		FROM lessons
		WHERE status = ? AND (title LIKE ? OR description LIKE ? OR subject LIKE ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	pattern := containsPattern(q)
	rows, err := r.db.QueryContext(ctx, query, models.LessonStatusPublished, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search lessons: %w", err)
	}
	defer rows.Close()

	return scanSearchHits(rows)
}

// scanSearchHits scans (id, title, subject) rows
func scanSearchHits(rows *sql.Rows) ([]models.SearchHit, error) {
	hits := []models.SearchHit{}
	for rows.Next() {
		var hit models.SearchHit
		if err := rows.Scan(&hit.ID, &hit.Title, &hit.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return hits, nil
}
