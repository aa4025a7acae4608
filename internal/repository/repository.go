package repository

import (
	"github.com/lingualearn/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Student      StudentRepository
	Teacher      TeacherRepository
	Token        TokenRepository
	LoginAttempt LoginAttemptRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Student:      NewStudentRepository(db),
		Teacher:      NewTeacherRepository(db),
		Token:        NewTokenRepository(db),
		LoginAttempt: NewLoginAttemptRepository(db),
	}
}
