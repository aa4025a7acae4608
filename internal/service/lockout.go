package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lingualearn/auth-service/internal/repository"
)

// LockoutPolicy is a sliding-window counter over failed login attempts. It is
// keyed by the claimed email, not a resolved principal, so the gate costs the
// same count query whether or not the account exists.
type LockoutPolicy struct {
	attempts    repository.LoginAttemptRepository
	window      time.Duration
	maxFailures int
	now         func() time.Time
}

// NewLockoutPolicy creates a lockout policy over the login attempt store
func NewLockoutPolicy(attempts repository.LoginAttemptRepository, window time.Duration, maxFailures int) *LockoutPolicy {
	return &LockoutPolicy{
		attempts:    attempts,
		window:      window,
		maxFailures: maxFailures,
		now:         time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (p *LockoutPolicy) WithClock(now func() time.Time) *LockoutPolicy {
	p.now = now
	return p
}

// IsLocked reports whether the email has accumulated enough recent failures
// to be locked out. Pure read: recording attempts is the orchestrator's job.
func (p *LockoutPolicy) IsLocked(ctx context.Context, email string) (bool, error) {
	since := p.now().Add(-p.window)

	failures, err := p.attempts.CountRecentFailures(ctx, email, since)
	if err != nil {
		return false, fmt.Errorf("failed to count login failures: %w", err)
	}

	return failures >= p.maxFailures, nil
}

// Window returns the lockout window length.
func (p *LockoutPolicy) Window() time.Duration {
	return p.window
}
