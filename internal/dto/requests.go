package dto

import (
	"time"

	"github.com/lingualearn/auth-service/internal/domain"
)

// RegisterRequest represents a student registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=3,max=30"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=50"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token presented for rotation. Refresh
// tokens travel in request bodies only, never in headers.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke for the current session.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse represents a successful authentication response
type AuthResponse struct {
	AccessToken  string                   `json:"accessToken"`
	RefreshToken string                   `json:"refreshToken"`
	User         domain.AuthenticatedUser `json:"user"`
}

// ProfileResponse represents the current user's profile. CurrentLevel is only
// present for students.
type ProfileResponse struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Username     string               `json:"username"`
	FirstName    string               `json:"firstName"`
	LastName     string               `json:"lastName"`
	Role         domain.Role          `json:"role"`
	CurrentLevel *domain.StudentLevel `json:"currentLevel,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
