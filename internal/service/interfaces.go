package service

import (
	"context"

	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.AuthenticatedUser, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress *string) (*dto.AuthResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, current *domain.CurrentUser, refreshToken string) error
	LogoutAll(ctx context.Context, current *domain.CurrentUser) error
	GetProfile(ctx context.Context, current *domain.CurrentUser) (*dto.ProfileResponse, error)
	ValidateAccessToken(ctx context.Context, token string) (*domain.CurrentUser, error)
	CleanupExpiredTokens(ctx context.Context) (int64, error)
	CleanupOldLoginAttempts(ctx context.Context) (int64, error)
}
