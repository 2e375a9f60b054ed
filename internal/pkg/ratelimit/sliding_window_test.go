package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsUpToMax(t *testing.T) {
	limiter := NewLimiter(time.Minute)

	for i := 0; i < 5; i++ {
		ok, _ := limiter.Allow("user-1", 5, time.Minute)
		assert.True(t, ok, "attempt %d should pass", i+1)
	}

	ok, retryAfter := limiter.Allow("user-1", 5, time.Minute)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(time.Minute)

	for i := 0; i < 3; i++ {
		limiter.Allow("edit:user-1", 3, time.Minute)
	}

	ok, _ := limiter.Allow("edit:user-1", 3, time.Minute)
	assert.False(t, ok)

	ok, _ = limiter.Allow("edit:user-2", 3, time.Minute)
	assert.True(t, ok)

	ok, _ = limiter.Allow("regenerate:user-1", 3, time.Minute)
	assert.True(t, ok)
}

func TestLimiterWindowSlides(t *testing.T) {
	limiter := NewLimiter(time.Minute)

	ok, _ := limiter.Allow("user-1", 1, 20*time.Millisecond)
	assert.True(t, ok)

	ok, _ = limiter.Allow("user-1", 1, 20*time.Millisecond)
	assert.False(t, ok)

	time.Sleep(25 * time.Millisecond)

	ok, _ = limiter.Allow("user-1", 1, 20*time.Millisecond)
	assert.True(t, ok, "old attempt should have left the window")
}

func TestLimiterDeniedAttemptDoesNotConsume(t *testing.T) {
	limiter := NewLimiter(time.Minute)

	limiter.Allow("user-1", 1, time.Minute)

	// Repeated denials never extend the wait.
	_, first := limiter.Allow("user-1", 1, time.Minute)
	time.Sleep(5 * time.Millisecond)
	_, second := limiter.Allow("user-1", 1, time.Minute)
	assert.Less(t, second, first)
}
