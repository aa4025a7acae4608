package domain

import "time"

// Role discriminates the two principal variants. Students and teachers live in
// disjoint tables and are never merged into a single polymorphic record.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// StudentLevel is the proficiency level assigned to a student.
type StudentLevel string

const (
	LevelBeginner     StudentLevel = "BEGINNER"
	LevelIntermediate StudentLevel = "INTERMEDIATE"
	LevelAdvanced     StudentLevel = "ADVANCED"
)

// Student represents a student account. Soft-deleted students keep their row
// with deleted_at set and are invisible to every lookup.
type Student struct {
	ID           string       `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	Username     string       `json:"username" db:"username"`
	PasswordHash string       `json:"-" db:"password_hash"`
	FirstName    string       `json:"firstName" db:"first_name"`
	LastName     string       `json:"lastName" db:"last_name"`
	CurrentLevel StudentLevel `json:"currentLevel" db:"current_level"`
	IsActive     bool         `json:"isActive" db:"is_active"`
	DeletedAt    *time.Time   `json:"-" db:"deleted_at"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// Teacher represents a teacher account. Teachers are provisioned out-of-band;
// registration never creates one.
type Teacher struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// AuthenticatedUser is the public projection of a principal returned by auth
// responses. It never carries the password hash.
type AuthenticatedUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

// CurrentUser is the identity attached to a request by the auth middleware.
type CurrentUser struct {
	UserID string
	Email  string
	Role   Role
}
