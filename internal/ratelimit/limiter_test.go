package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter() (*Limiter, *time.Time) {
	l := NewLimiter()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestQueryLimit(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("alice", CategoryQuery)
		require.True(t, ok, "request %d should pass", i)
	}

	ok, msg := l.Allow("alice", CategoryQuery)
	assert.False(t, ok)
	assert.Contains(t, msg, "Too many questions")

	// Another user is unaffected.
	ok, _ = l.Allow("bob", CategoryQuery)
	assert.True(t, ok)

	// The window slides.
	*now = now.Add(61 * time.Second)
	ok, _ = l.Allow("alice", CategoryQuery)
	assert.True(t, ok)
}

func TestFileOpsLimit(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("alice", CategoryFileOps)
		require.True(t, ok)
	}

	ok, msg := l.Allow("alice", CategoryFileOps)
	assert.False(t, ok)
	assert.Contains(t, msg, "file operations")

	*now = now.Add(time.Hour + time.Second)
	ok, _ = l.Allow("alice", CategoryFileOps)
	assert.True(t, ok)
}

func TestDailyTotalLimit(t *testing.T) {
	l, now := newTestLimiter()

	// Spread requests so no per-category window trips first.
	granted := 0
	for i := 0; i < 120; i++ {
		ok, _ := l.Allow("alice", CategoryFileOps)
		if ok {
			granted++
		}
		*now = now.Add(7 * time.Minute)
	}

	// 120 attempts over 14 hours: the daily total of 100 caps them.
	assert.Equal(t, 100, granted)

	ok, msg := l.Allow("alice", CategoryFileOps)
	assert.False(t, ok)
	assert.Contains(t, msg, "Daily request limit")
}

func TestGlobalCompletionLimit(t *testing.T) {
	l, _ := newTestLimiter()

	// 30 queries from distinct users exhaust the shared budget.
	for i := 0; i < 30; i++ {
		ok, _ := l.Allow(fmt.Sprintf("user-%d", i), CategoryQuery)
		require.True(t, ok)
	}

	ok, msg := l.Allow("late-user", CategoryQuery)
	assert.False(t, ok)
	assert.Contains(t, msg, "AI service is busy")
}

func TestDeniedRequestNotRecorded(t *testing.T) {
	l, now := newTestLimiter()

	for i := 0; i < 10; i++ {
		l.Allow("alice", CategoryQuery)
	}
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("alice", CategoryQuery)
		assert.False(t, ok)
	}

	// Once the minute passes the limit resets fully; denied attempts
	// must not have extended it.
	*now = now.Add(61 * time.Second)
	ok, _ := l.Allow("alice", CategoryQuery)
	assert.True(t, ok)
}
