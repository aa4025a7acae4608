package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/internal/repository"
)

// In-memory repositories backing the service tests. They mirror the SQL
// implementations' contracts: sentinel errors, soft-delete visibility, and
// idempotent revocation.

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[string]*domain.Student
	seq      int
	failWith error
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*domain.Student)}
}

func (r *fakeStudentRepo) Create(ctx context.Context, student *domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, existing := range r.students {
		if existing.Email == student.Email || existing.Username == student.Username {
			return repository.ErrDuplicateKey
		}
	}
	r.seq++
	student.ID = fmt.Sprintf("student-%d", r.seq)
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	r.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok || s.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *fakeStudentRepo) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.Email == email && s.DeletedAt == nil {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStudentRepo) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.Username == username && s.DeletedAt == nil {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeTeacherRepo struct {
	mu       sync.Mutex
	teachers map[string]*domain.Teacher
	seq      int
}

func newFakeTeacherRepo() *fakeTeacherRepo {
	return &fakeTeacherRepo{teachers: make(map[string]*domain.Teacher)}
}

func (r *fakeTeacherRepo) Create(ctx context.Context, teacher *domain.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teachers {
		if existing.Email == teacher.Email || existing.Username == teacher.Username {
			return repository.ErrDuplicateKey
		}
	}
	r.seq++
	teacher.ID = fmt.Sprintf("teacher-%d", r.seq)
	teacher.CreatedAt = time.Now()
	teacher.UpdatedAt = teacher.CreatedAt
	r.teachers[teacher.ID] = teacher
	return nil
}

func (r *fakeTeacherRepo) GetByID(ctx context.Context, id string) (*domain.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teachers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (r *fakeTeacherRepo) GetByEmail(ctx context.Context, email string) (*domain.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teachers {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTeacherRepo) GetByUsername(ctx context.Context, username string) (*domain.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teachers {
		if t.Username == username {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
	seq    int
	clock  func() time.Time
}

func newFakeTokenRepo(clock func() time.Time) *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.RefreshToken), clock: clock}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[token.Token]; exists {
		return repository.ErrDuplicateKey
	}
	r.seq++
	token.ID = fmt.Sprintf("token-%d", r.seq)
	token.CreatedAt = r.clock()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeTokenRepo) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeTokenRepo) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.tokens[token]; ok {
		record.Revoked = true
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllForUser(ctx context.Context, userID string, userType domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.tokens {
		if record.UserID == userID && record.UserType == userType {
			record.Revoked = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpiredOrRevoked(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	now := r.clock()
	for key, record := range r.tokens {
		if record.Revoked || record.ExpiresAt.Before(now) {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeTokenRepo) liveCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, record := range r.tokens {
		if record.UserID == userID && !record.Revoked {
			count++
		}
	}
	return count
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []*domain.LoginAttempt
	clock    func() time.Time
}

func newFakeAttemptRepo(clock func() time.Time) *fakeAttemptRepo {
	return &fakeAttemptRepo{clock: clock}
}

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *domain.LoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt.ID = fmt.Sprintf("attempt-%d", len(r.attempts)+1)
	attempt.CreatedAt = r.clock()
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *fakeAttemptRepo) CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.attempts {
		if a.Email == email && !a.Success && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.LoginAttempt
	var deleted int64
	for _, a := range r.attempts {
		if a.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.attempts = kept
	return deleted, nil
}

func (r *fakeAttemptRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

func (r *fakeAttemptRepo) last() *domain.LoginAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.attempts) == 0 {
		return nil
	}
	return r.attempts[len(r.attempts)-1]
}

// fakeClock is a manually advanced time source shared by the service, the
// token manager, and the lockout policy under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
