package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/pkg/database"
)

// studentRepository implements StudentRepository against Postgres
type studentRepository struct {
	db *database.Postgres
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *database.Postgres) StudentRepository {
	return &studentRepository{db: db}
}

const studentColumns = `id, email, username, password_hash, first_name, last_name, current_level, is_active, deleted_at, created_at, updated_at`

// Create inserts a new student row
func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	query := `
		INSERT INTO students (id, email, username, password_hash, first_name, last_name, current_level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if student.ID == "" {
		student.ID = uuid.New().String()
	}
	if student.CurrentLevel == "" {
		student.CurrentLevel = domain.LevelBeginner
	}

	now := time.Now()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.UpdatedAt.IsZero() {
		student.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		student.ID,
		student.Email,
		student.Username,
		student.PasswordHash,
		student.FirstName,
		student.LastName,
		student.CurrentLevel,
		student.IsActive,
		student.CreatedAt,
		student.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("student email or username already taken: %w", ErrDuplicateKey)
			}
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID retrieves a student by id, excluding soft-deleted rows
func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 AND deleted_at IS NULL`, studentColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, id), "id", id)
}

// GetByEmail retrieves a student by email, excluding soft-deleted rows
func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE email = $1 AND deleted_at IS NULL`, studentColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, email), "email", email)
}

// GetByUsername retrieves a student by username, excluding soft-deleted rows
func (r *studentRepository) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE username = $1 AND deleted_at IS NULL`, studentColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, username), "username", username)
}

func (r *studentRepository) scanOne(row *sql.Row, key, value string) (*domain.Student, error) {
	student := &domain.Student{}
	var deletedAt sql.NullTime

	err := row.Scan(
		&student.ID,
		&student.Email,
		&student.Username,
		&student.PasswordHash,
		&student.FirstName,
		&student.LastName,
		&student.CurrentLevel,
		&student.IsActive,
		&deletedAt,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("student with %s %s not found: %w", key, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get student by %s: %w", key, err)
	}

	if deletedAt.Valid {
		student.DeletedAt = &deletedAt.Time
	}

	return student, nil
}
