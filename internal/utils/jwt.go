package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lingualearn/auth-service/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the JWT claim set carried by both token kinds. Subject holds the
// principal id, ID (jti) is set on refresh tokens only.
type Claims struct {
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	TokenType string      `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies access and refresh tokens. The two kinds use
// distinct secrets, so a token of one kind never verifies as the other.
type JWTManager struct {
	accessSecret       []byte
	refreshSecret      []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	now                func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(accessSecret, refreshSecret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:       []byte(accessSecret),
		refreshSecret:      []byte(refreshSecret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
		now:                time.Now,
	}
}

// WithClock overrides the time source. Used by tests to make expiry
// deterministic.
func (j *JWTManager) WithClock(now func() time.Time) *JWTManager {
	j.now = now
	return j
}

// GenerateAccessToken signs a short-lived access token for the principal.
func (j *JWTManager) GenerateAccessToken(user *domain.AuthenticatedUser) (string, error) {
	now := j.now()
	claims := &Claims{
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken signs a refresh token carrying a fresh random jti, so
// two tokens issued for the same principal in the same instant never collide.
func (j *JWTManager) GenerateRefreshToken(user *domain.AuthenticatedUser) (string, error) {
	now := j.now()
	claims := &Claims{
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (j *JWTManager) VerifyAccessToken(tokenString string) (*Claims, error) {
	return j.verify(tokenString, j.accessSecret, tokenTypeAccess)
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (j *JWTManager) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return j.verify(tokenString, j.refreshSecret, tokenTypeRefresh)
}

// AccessTokenExpiry returns the access token lifetime.
func (j *JWTManager) AccessTokenExpiry() time.Duration {
	return j.accessTokenExpiry
}

// RefreshTokenExpiry returns the refresh token lifetime.
func (j *JWTManager) RefreshTokenExpiry() time.Duration {
	return j.refreshTokenExpiry
}

func (j *JWTManager) verify(tokenString string, secret []byte, wantType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.TokenType != wantType {
		return nil, fmt.Errorf("invalid token type")
	}

	if !claims.Role.Valid() {
		return nil, fmt.Errorf("invalid role in token")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("missing subject in token")
	}

	return claims, nil
}
