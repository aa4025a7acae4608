package repository

import (
	"context"
	"time"

	"github.com/lingualearn/auth-service/internal/domain"
)

// StudentRepository defines lookups over the student principal table.
// Soft-deleted rows are invisible to every method.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
	GetByUsername(ctx context.Context, username string) (*domain.Student, error)
}

// TeacherRepository defines lookups over the teacher principal table.
type TeacherRepository interface {
	Create(ctx context.Context, teacher *domain.Teacher) error
	GetByID(ctx context.Context, id string) (*domain.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*domain.Teacher, error)
	GetByUsername(ctx context.Context, username string) (*domain.Teacher, error)
}

// TokenRepository is the refresh-token ledger: every issued refresh token is
// recorded here and consulted before any cryptographic verification.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	// Revoke marks the matching record revoked. Idempotent: revoking an
	// already-revoked or absent token succeeds, the end state is identical.
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string, userType domain.Role) error
	// DeleteExpiredOrRevoked hard-deletes finished records and returns the
	// number removed.
	DeleteExpiredOrRevoked(ctx context.Context) (int64, error)
}

// LoginAttemptRepository records login attempts per claimed email and serves
// the windowed failure count behind the lockout policy.
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *domain.LoginAttempt) error
	CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error)
	// DeleteOlderThan purges attempts created before cutoff and returns the
	// number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
