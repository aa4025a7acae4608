package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/pkg/database"
)

// loginAttemptRepository implements LoginAttemptRepository against Postgres
type loginAttemptRepository struct {
	db *database.Postgres
}

// NewLoginAttemptRepository creates a new login attempt repository
func NewLoginAttemptRepository(db *database.Postgres) LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

// Create appends a login attempt row. The email is recorded as claimed, with
// no check that a matching principal exists.
func (r *loginAttemptRepository) Create(ctx context.Context, attempt *domain.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (id, email, success, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		attempt.ID,
		attempt.Email,
		attempt.Success,
		attempt.IPAddress,
		attempt.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create login attempt: %w", err)
	}

	return nil
}

// CountRecentFailures counts failed attempts for the email since the given
// instant. The same query runs whether or not the email maps to an account.
func (r *loginAttemptRepository) CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE email = $1 AND success = FALSE AND created_at >= $2
	`

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, email, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent failures: %w", err)
	}

	return count, nil
}

// DeleteOlderThan purges attempts created before cutoff
func (r *loginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM login_attempts WHERE created_at < $1`

	result, err := r.db.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old login attempts: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}
