package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/madaure/backend/internal/models"
	"github.com/madaure/backend/libs/apperrors"
	"go.uber.org/zap"
)

// userRepository implements the user data access used by services
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database
//
// A duplicate email is reported as a validation error on the "email" field.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, branch, locale, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Branch,
		user.Locale,
		user.CreatedAt,
	)
	if isDuplicateKey(err) {
		return apperrors.InvalidField("email", "cet email est déjà utilisé")
	}
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

const userColumns = `id, name, email, password_hash, role, branch, locale, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Branch,
		&user.Locale,
		&user.CreatedAt,
	)
	return user, err
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Utilisateur non trouvé")
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Utilisateur non trouvé")
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ListTeachers retrieves every teacher ordered by name
func (r *userRepository) ListTeachers(ctx context.Context) ([]models.TeacherListItem, error) {
	query := `SELECT id, name FROM users WHERE role = ? ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, models.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	teachers := []models.TeacherListItem{}
	for rows.Next() {
		var teacher models.TeacherListItem
		if err := rows.Scan(&teacher.ID, &teacher.Name); err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}
		teachers = append(teachers, teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return teachers, nil
}

// ListIDsByRole retrieves the IDs of every user with the given role
func (r *userRepository) ListIDsByRole(ctx context.Context, role models.Role) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users WHERE role = ? ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

// SearchTeachers retrieves teachers whose name contains q
func (r *userRepository) SearchTeachers(ctx context.Context, q string, limit int) ([]models.SearchHit, error) {
	query := `
		SELECT id, name
		FROM users
		WHERE role = ? AND name LIKE ?
		ORDER BY name, id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, models.RoleTeacher, containsPattern(q), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search teachers: %w", err)
	}
	defer rows.Close()

	hits := []models.SearchHit{}
	for rows.Next() {
		var hit models.SearchHit
		if err := rows.Scan(&hit.ID, &hit.Title); err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return hits, nil
}
