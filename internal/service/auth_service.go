package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/internal/dto"
	"github.com/lingualearn/auth-service/internal/repository"
	"github.com/lingualearn/auth-service/internal/utils"
)

// Messages returned to callers. Credential and conflict failures stay generic
// so responses never reveal whether an account exists.
const (
	msgInvalidCredentials  = "Invalid email or password"
	msgAccountLocked       = "Too many failed login attempts. Please try again later."
	msgRegisterConflict    = "Unable to create account. The email or username may already be in use."
	msgInvalidRefreshToken = "Invalid refresh token"
	msgRevokedRefreshToken = "Invalid or revoked refresh token"
	msgExpiredRefreshToken = "Refresh token has expired"
	msgUserNotFound        = "User not found"
)

// authService implements AuthService interface
type authService struct {
	students         repository.StudentRepository
	teachers         repository.TeacherRepository
	tokens           repository.TokenRepository
	attempts         repository.LoginAttemptRepository
	sources          map[domain.Role]principalSource
	jwtManager       *utils.JWTManager
	lockout          *LockoutPolicy
	logger           *zap.Logger
	bcryptCost       int
	attemptRetention time.Duration
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	repos *repository.Repositories,
	jwtManager *utils.JWTManager,
	lockout *LockoutPolicy,
	logger *zap.Logger,
	bcryptCost int,
	attemptRetention time.Duration,
) AuthService {
	return &authService{
		students:         repos.Student,
		teachers:         repos.Teacher,
		tokens:           repos.Token,
		attempts:         repos.LoginAttempt,
		sources:          newPrincipalSources(repos.Student, repos.Teacher),
		jwtManager:       jwtManager,
		lockout:          lockout,
		logger:           logger,
		bcryptCost:       bcryptCost,
		attemptRetention: attemptRetention,
		now:              time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (s *authService) WithClock(now func() time.Time) *authService {
	s.now = now
	return s
}

// Register creates a new student account. Email and username must be unique
// across students AND teachers, so a registration can never shadow a teacher
// login. The conflict response never says which field collided.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.AuthenticatedUser, error) {
	email := utils.SanitizeEmail(req.Email)

	if !utils.ValidateEmail(email) {
		return nil, NewValidationError("invalid email format")
	}
	if !utils.ValidateUsername(req.Username) {
		return nil, NewValidationError("username must be 3-30 characters of letters, digits, and underscores")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, NewValidationError("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	taken, err := s.identityTaken(ctx, email, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check account uniqueness: %w", err)
	}
	if taken {
		return nil, NewConflictError(msgRegisterConflict)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &domain.Student{
		Email:        email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CurrentLevel: domain.LevelBeginner,
		IsActive:     true,
	}

	err = s.students.Create(ctx, student)
	if err != nil {
		// A concurrent registration can win the race between the uniqueness
		// check and the insert.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, NewConflictError(msgRegisterConflict)
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info("student registered", zap.String("student_id", student.ID))

	user := studentPrincipal(student).user
	return &user, nil
}

// identityTaken checks both unique columns of both principal tables. The four
// lookups are independent, so they run concurrently.
func (s *authService) identityTaken(ctx context.Context, email, username string) (bool, error) {
	lookups := []func(context.Context) error{
		func(ctx context.Context) error { _, err := s.students.GetByEmail(ctx, email); return err },
		func(ctx context.Context) error { _, err := s.students.GetByUsername(ctx, username); return err },
		func(ctx context.Context) error { _, err := s.teachers.GetByEmail(ctx, email); return err },
		func(ctx context.Context) error { _, err := s.teachers.GetByUsername(ctx, username); return err },
	}

	results := make(chan error, len(lookups))
	for _, lookup := range lookups {
		go func(fn func(context.Context) error) {
			results <- fn(ctx)
		}(lookup)
	}

	taken := false
	var failure error
	for range lookups {
		err := <-results
		switch {
		case err == nil:
			taken = true
		case errors.Is(err, repository.ErrNotFound):
			// Free.
		default:
			failure = err
		}
	}

	if failure != nil {
		return false, failure
	}
	return taken, nil
}

// Login authenticates a student or teacher by email and password. Every
// credential check is recorded in the attempt log; a locked-out email is
// rejected before credentials are checked and leaves no new record.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress *string) (*dto.AuthResponse, error) {
	email := utils.SanitizeEmail(req.Email)

	locked, err := s.lockout.IsLocked(ctx, email)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, NewForbiddenError(msgAccountLocked)
	}

	p, authErr := s.authenticate(ctx, email, req.Password)

	s.recordAttempt(ctx, email, authErr == nil, ipAddress)

	if authErr != nil {
		if errors.Is(authErr, repository.ErrNotFound) {
			return nil, NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, authErr
	}

	response, err := s.issueTokens(ctx, &p.user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded",
		zap.String("user_id", p.user.ID),
		zap.String("role", string(p.user.Role)))

	return response, nil
}

// authenticate tries each role in the fixed login order and returns the first
// principal whose password matches. A row whose password mismatches, or an
// inactive row, does not end the search: a later table may hold the same
// email with the right credentials, since only registration enforces
// cross-table uniqueness and teachers are provisioned out-of-band.
// Anything short of a match comes back as ErrNotFound, so the attempt log
// and the caller's error treat every miss the same way.
func (s *authService) authenticate(ctx context.Context, email, password string) (*principal, error) {
	for _, role := range loginRoleOrder {
		p, err := s.sources[role].byEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", role, err)
		}
		if p.active && utils.CheckPasswordHash(password, p.passwordHash) {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

// recordAttempt appends to the login audit log. The log feeds the lockout
// counter; a write failure must not turn a good login into an error, so it is
// logged and swallowed.
func (s *authService) recordAttempt(ctx context.Context, email string, success bool, ipAddress *string) {
	attempt := &domain.LoginAttempt{
		Email:     email,
		Success:   success,
		IPAddress: ipAddress,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Warn("failed to record login attempt",
			zap.String("email", email),
			zap.Error(err))
	}
}

// RefreshTokens rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. The ledger is consulted before the signature so a
// token that was never issued here, or already spent, dies on the same check.
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	record, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorizedError(msgRevokedRefreshToken)
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if record.Revoked {
		return nil, NewUnauthorizedError(msgRevokedRefreshToken)
	}
	if s.now().After(record.ExpiresAt) {
		return nil, NewUnauthorizedError(msgExpiredRefreshToken)
	}

	claims, err := s.jwtManager.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, NewUnauthorizedError(msgInvalidRefreshToken)
	}

	p, err := s.sources[record.UserType].byID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorizedError(msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to resolve token owner: %w", err)
	}
	if !p.active {
		return nil, NewUnauthorizedError(msgUserNotFound)
	}

	// Revoke before issue. If the new pair fails to persist, the old token is
	// already dead and the session ends instead of forking.
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return s.issueTokens(ctx, &p.user)
}

// Logout revokes a single session's refresh token. Revoking a token that is
// already gone is a success: the end state is the same.
func (s *authService) Logout(ctx context.Context, current *domain.CurrentUser, refreshToken string) error {
	record, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}

	// A token belonging to someone else is not yours to revoke. The call
	// still reports success so logout leaks nothing about other sessions.
	if record.UserID != current.UserID || record.UserType != current.Role {
		s.logger.Warn("logout presented a foreign refresh token",
			zap.String("user_id", current.UserID))
		return nil
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// LogoutAll revokes every live refresh token of the current user across all
// devices. Outstanding access tokens stay valid until they expire.
func (s *authService) LogoutAll(ctx context.Context, current *domain.CurrentUser) error {
	if err := s.tokens.RevokeAllForUser(ctx, current.UserID, current.Role); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	s.logger.Info("all sessions revoked",
		zap.String("user_id", current.UserID),
		zap.String("role", string(current.Role)))

	return nil
}

// GetProfile returns the current user's profile from the store, not from
// token claims, so a stale token never serves stale profile data.
func (s *authService) GetProfile(ctx context.Context, current *domain.CurrentUser) (*dto.ProfileResponse, error) {
	p, err := s.sources[current.Role].byID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorizedError(msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &dto.ProfileResponse{
		ID:           p.user.ID,
		Email:        p.user.Email,
		Username:     p.user.Username,
		FirstName:    p.user.FirstName,
		LastName:     p.user.LastName,
		Role:         p.user.Role,
		CurrentLevel: p.level,
		CreatedAt:    p.createdAt,
	}, nil
}

// ValidateAccessToken verifies an access token and confirms its subject still
// exists and is active. A deleted or deactivated account invalidates all of
// its outstanding access tokens immediately.
func (s *authService) ValidateAccessToken(ctx context.Context, token string) (*domain.CurrentUser, error) {
	claims, err := s.jwtManager.VerifyAccessToken(token)
	if err != nil {
		return nil, NewUnauthorizedError("Invalid or expired access token")
	}

	p, err := s.sources[claims.Role].byID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewUnauthorizedError(msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if !p.active {
		return nil, NewUnauthorizedError(msgUserNotFound)
	}

	return &domain.CurrentUser{
		UserID: p.user.ID,
		Email:  p.user.Email,
		Role:   p.user.Role,
	}, nil
}

// CleanupExpiredTokens deletes ledger rows that can never be accepted again.
func (s *authService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	count, err := s.tokens.DeleteExpiredOrRevoked(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up refresh tokens: %w", err)
	}
	return count, nil
}

// CleanupOldLoginAttempts deletes attempt rows older than the retention
// period. The lockout window is far shorter than retention, so the counter is
// never affected.
func (s *authService) CleanupOldLoginAttempts(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.attemptRetention)

	count, err := s.attempts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up login attempts: %w", err)
	}
	return count, nil
}
