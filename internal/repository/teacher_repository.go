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

// teacherRepository implements TeacherRepository against Postgres
type teacherRepository struct {
	db *database.Postgres
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(db *database.Postgres) TeacherRepository {
	return &teacherRepository{db: db}
}

const teacherColumns = `id, email, username, password_hash, first_name, last_name, created_at, updated_at`

// Create inserts a new teacher row. Teachers are provisioned out-of-band, not
// through the registration endpoint.
func (r *teacherRepository) Create(ctx context.Context, teacher *domain.Teacher) error {
	query := `
		INSERT INTO teachers (id, email, username, password_hash, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if teacher.ID == "" {
		teacher.ID = uuid.New().String()
	}

	now := time.Now()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	if teacher.UpdatedAt.IsZero() {
		teacher.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		teacher.ID,
		teacher.Email,
		teacher.Username,
		teacher.PasswordHash,
		teacher.FirstName,
		teacher.LastName,
		teacher.CreatedAt,
		teacher.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("teacher email or username already taken: %w", ErrDuplicateKey)
			}
		}
		return fmt.Errorf("failed to create teacher: %w", err)
	}

	return nil
}

// GetByID retrieves a teacher by id
func (r *teacherRepository) GetByID(ctx context.Context, id string) (*domain.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers WHERE id = $1`, teacherColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, id), "id", id)
}

// GetByEmail retrieves a teacher by email
func (r *teacherRepository) GetByEmail(ctx context.Context, email string) (*domain.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers WHERE email = $1`, teacherColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, email), "email", email)
}

// GetByUsername retrieves a teacher by username
func (r *teacherRepository) GetByUsername(ctx context.Context, username string) (*domain.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers WHERE username = $1`, teacherColumns)
	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, username), "username", username)
}

func (r *teacherRepository) scanOne(row *sql.Row, key, value string) (*domain.Teacher, error) {
	teacher := &domain.Teacher{}

	err := row.Scan(
		&teacher.ID,
		&teacher.Email,
		&teacher.Username,
		&teacher.PasswordHash,
		&teacher.FirstName,
		&teacher.LastName,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("teacher with %s %s not found: %w", key, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get teacher by %s: %w", key, err)
	}

	return teacher, nil
}
