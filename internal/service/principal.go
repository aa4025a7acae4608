package service

import (
	"context"
	"time"

	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/internal/repository"
)

// principal is a resolved account in role-neutral form. Level is nil for
// teachers.
type principal struct {
	user         domain.AuthenticatedUser
	passwordHash string
	active       bool
	level        *domain.StudentLevel
	createdAt    time.Time
}

// principalSource resolves accounts of a single role. Role-dependent behavior
// is dispatched through the sources table instead of switch statements, so
// adding a role means adding a table entry.
type principalSource struct {
	byID    func(ctx context.Context, id string) (*principal, error)
	byEmail func(ctx context.Context, email string) (*principal, error)
}

// loginRoleOrder fixes the resolution order when a login email could belong to
// either table. Students are the common case.
var loginRoleOrder = []domain.Role{domain.RoleStudent, domain.RoleTeacher}

func newPrincipalSources(students repository.StudentRepository, teachers repository.TeacherRepository) map[domain.Role]principalSource {
	return map[domain.Role]principalSource{
		domain.RoleStudent: {
			byID: func(ctx context.Context, id string) (*principal, error) {
				s, err := students.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return studentPrincipal(s), nil
			},
			byEmail: func(ctx context.Context, email string) (*principal, error) {
				s, err := students.GetByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				return studentPrincipal(s), nil
			},
		},
		domain.RoleTeacher: {
			byID: func(ctx context.Context, id string) (*principal, error) {
				t, err := teachers.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return teacherPrincipal(t), nil
			},
			byEmail: func(ctx context.Context, email string) (*principal, error) {
				t, err := teachers.GetByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
				return teacherPrincipal(t), nil
			},
		},
	}
}

func studentPrincipal(s *domain.Student) *principal {
	level := s.CurrentLevel
	return &principal{
		user: domain.AuthenticatedUser{
			ID:        s.ID,
			Email:     s.Email,
			Username:  s.Username,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Role:      domain.RoleStudent,
		},
		passwordHash: s.PasswordHash,
		active:       s.IsActive,
		level:        &level,
		createdAt:    s.CreatedAt,
	}
}

func teacherPrincipal(t *domain.Teacher) *principal {
	return &principal{
		user: domain.AuthenticatedUser{
			ID:        t.ID,
			Email:     t.Email,
			Username:  t.Username,
			FirstName: t.FirstName,
			LastName:  t.LastName,
			Role:      domain.RoleTeacher,
		},
		passwordHash: t.PasswordHash,
		active:       true,
		createdAt:    t.CreatedAt,
	}
}
