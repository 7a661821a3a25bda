package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/conduit/internal/config"
)

func newTestLimiter(t *testing.T) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(config.Auth{
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  10 * time.Minute,
	})
	t.Cleanup(rl.Stop)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_LocksOutAfterMaxAttempts(t *testing.T) {
	rl, _ := newTestLimiter(t)

	for i := 0; i < 2; i++ {
		locked, _ := rl.RecordFailure("1.2.3.4", "jake@example.com")
		assert.False(t, locked)
		allowed, _ := rl.Allow("1.2.3.4", "jake@example.com")
		assert.True(t, allowed)
	}

	locked, lockout := rl.RecordFailure("1.2.3.4", "JAKE@example.com")
	assert.True(t, locked)
	assert.Equal(t, 10*time.Minute, lockout)

	allowed, retryAfter := rl.Allow("1.2.3.4", "jake@example.com")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, retryAfter)

	allowed, _ = rl.Allow("5.6.7.8", "jake@example.com")
	assert.True(t, allowed, "other clients are unaffected")
}

func TestRateLimiter_LockoutExpires(t *testing.T) {
	rl, now := newTestLimiter(t)

	for i := 0; i < 3; i++ {
		rl.RecordFailure("ip", "a@example.com")
	}
	allowed, _ := rl.Allow("ip", "a@example.com")
	assert.False(t, allowed)

	*now = now.Add(11 * time.Minute)
	allowed, _ = rl.Allow("ip", "a@example.com")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl, now := newTestLimiter(t)

	rl.RecordFailure("ip", "a@example.com")
	rl.RecordFailure("ip", "a@example.com")

	*now = now.Add(2 * time.Minute)
	locked, _ := rl.RecordFailure("ip", "a@example.com")
	assert.False(t, locked, "failures outside the window start a new count")
}

func TestRateLimiter_SuccessClears(t *testing.T) {
	rl, _ := newTestLimiter(t)

	rl.RecordFailure("ip", "a@example.com")
	rl.RecordFailure("ip", "a@example.com")
	rl.RecordSuccess("ip", "a@example.com")

	locked, _ := rl.RecordFailure("ip", "a@example.com")
	assert.False(t, locked)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, now := newTestLimiter(t)

	rl.RecordFailure("ip", "a@example.com")
	*now = now.Add(2 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.attempts)
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(config.Auth{})
	defer rl.Stop()
	rl.Stop()

	assert.Equal(t, 5, rl.maxAttempts)
	assert.Equal(t, 15*time.Minute, rl.window)
	assert.Equal(t, 30*time.Minute, rl.lockoutDuration)
}
