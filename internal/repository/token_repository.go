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

// tokenRepository implements the refresh-token ledger against Postgres
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create records a freshly issued refresh token
func (r *tokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, token, user_id, user_type, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.Token,
		token.UserID,
		token.UserType,
		token.ExpiresAt,
		token.Revoked,
		token.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("refresh token already recorded: %w", ErrDuplicateKey)
			}
		}
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

// GetByToken retrieves a ledger record by the signed token string
func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, token, user_id, user_type, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token = $1
	`

	record := &domain.RefreshToken{}

	err := r.db.DB.QueryRowContext(ctx, query, token).Scan(
		&record.ID,
		&record.Token,
		&record.UserID,
		&record.UserType,
		&record.ExpiresAt,
		&record.Revoked,
		&record.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("refresh token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return record, nil
}

// Revoke marks the matching record revoked. Revoking an absent or
// already-revoked token is a no-op that reports success.
func (r *tokenRepository) Revoke(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAllForUser revokes every live token for the principal
func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID string, userType domain.Role) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE user_id = $1 AND user_type = $2 AND revoked = FALSE
	`

	if _, err := r.db.DB.ExecContext(ctx, query, userID, userType); err != nil {
		return fmt.Errorf("failed to revoke tokens for user %s: %w", userID, err)
	}

	return nil
}

// DeleteExpiredOrRevoked hard-deletes finished ledger records
func (r *tokenRepository) DeleteExpiredOrRevoked(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked = TRUE`

	result, err := r.db.DB.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete finished refresh tokens: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}
