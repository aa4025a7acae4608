package service

import (
	"context"
	"fmt"

	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/internal/dto"
)

// issueTokens signs a fresh access/refresh pair and records the refresh token
// in the ledger. A refresh token that is not in the ledger is never accepted,
// so the insert must succeed before the pair is handed out.
func (s *authService) issueTokens(ctx context.Context, user *domain.AuthenticatedUser) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &domain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		UserType:  user.Role,
		ExpiresAt: s.now().Add(s.jwtManager.RefreshTokenExpiry()),
	}

	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	}, nil
}
