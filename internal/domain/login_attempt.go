package domain

import "time"

// LoginAttempt records one login try for a claimed email. The email is stored
// raw and does not have to match an existing principal, so the lockout counter
// behaves identically for real and unknown accounts. Rows are append-only and
// only ever read in aggregate.
type LoginAttempt struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Success   bool      `json:"success" db:"success"`
	IPAddress *string   `json:"ip_address" db:"ip_address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
