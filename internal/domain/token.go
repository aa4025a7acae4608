package domain

import "time"

// RefreshToken is a ledger record for an issued refresh token. Records are
// created on every login or refresh, marked revoked on logout/logout-all/rotation,
// and hard-deleted by the maintenance sweep once expired or revoked.
type RefreshToken struct {
	ID        string    `json:"id" db:"id"`
	Token     string    `json:"-" db:"token"`
	UserID    string    `json:"user_id" db:"user_id"`
	UserType  Role      `json:"user_type" db:"user_type"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TokenPair is an access/refresh token pair issued together.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
