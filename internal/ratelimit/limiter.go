// Package ratelimit applies per-user sliding-window limits on the
// expensive endpoints, plus one global budget shared by every user for
// the completion provider.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Category names the throttled operation classes.
type Category string

const (
	CategoryQuery      Category = "query"
	CategoryFileOps    Category = "file_operations"
	categoryTotal      Category = "total"
	categoryCompletion Category = "completion_global"
)

type limit struct {
	max    int
	window time.Duration
}

var defaultLimits = map[Category]limit{
	CategoryQuery:      {max: 10, window: time.Minute},
	CategoryFileOps:    {max: 10, window: time.Hour},
	categoryTotal:      {max: 100, window: 24 * time.Hour},
	categoryCompletion: {max: 30, window: time.Minute},
}

// Limiter tracks request timestamps per user and category. Safe for
// concurrent use.
type Limiter struct {
	mu     sync.Mutex
	limits map[Category]limit
	users  map[string]map[Category][]time.Time
	global []time.Time
	now    func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		limits: defaultLimits,
		users:  make(map[string]map[Category][]time.Time),
		now:    time.Now,
	}
}

// SetCompletionLimit overrides the shared completion budget per minute.
func (l *Limiter) SetCompletionLimit(perMinute int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	limits := make(map[Category]limit, len(l.limits))
	for k, v := range l.limits {
		limits[k] = v
	}
	limits[categoryCompletion] = limit{max: perMinute, window: time.Minute}
	l.limits = limits
}

// Allow checks the category limit, the daily total and (for queries) the
// global completion budget. An allowed request is recorded; a denied one
// is not.
func (l *Limiter) Allow(userID string, category Category) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(userID, now)

	catLimit := l.limits[category]
	if l.countLocked(userID, category, catLimit.window, now) >= catLimit.max {
		switch category {
		case CategoryQuery:
			return false, "Too many questions! Please wait 1 minute before asking more."
		case CategoryFileOps:
			return false, "Too many file operations! Please wait 1 hour before uploading or deleting more files."
		default:
			return false, "Rate limit exceeded. Please slow down."
		}
	}

	totalLimit := l.limits[categoryTotal]
	if l.countLocked(userID, categoryTotal, totalLimit.window, now) >= totalLimit.max {
		return false, "Daily request limit reached! Please try again tomorrow."
	}

	if category == CategoryQuery {
		if ok, msg := l.allowCompletionLocked(now); !ok {
			return false, msg
		}
	}

	l.recordLocked(userID, category, now)
	l.recordLocked(userID, categoryTotal, now)
	return true, ""
}

func (l *Limiter) allowCompletionLocked(now time.Time) (bool, string) {
	compLimit := l.limits[categoryCompletion]

	kept := l.global[:0]
	for _, ts := range l.global {
		if now.Sub(ts) < compLimit.window {
			kept = append(kept, ts)
		}
	}
	l.global = kept

	if len(l.global) >= compLimit.max {
		wait := compLimit.window - now.Sub(l.global[0])
		return false, fmt.Sprintf("The AI service is busy. Please wait %.0f seconds and try again.", wait.Seconds())
	}

	l.global = append(l.global, now)
	return true, ""
}

func (l *Limiter) countLocked(userID string, category Category, window time.Duration, now time.Time) int {
	count := 0
	for _, ts := range l.users[userID][category] {
		if now.Sub(ts) < window {
			count++
		}
	}
	return count
}

func (l *Limiter) recordLocked(userID string, category Category, now time.Time) {
	if l.users[userID] == nil {
		l.users[userID] = make(map[Category][]time.Time)
	}
	l.users[userID][category] = append(l.users[userID][category], now)
}

// pruneLocked drops records older than the longest window so memory
// stays bounded by active users.
func (l *Limiter) pruneLocked(userID string, now time.Time) {
	const maxAge = 24 * time.Hour

	categories := l.users[userID]
	for category, timestamps := range categories {
		kept := timestamps[:0]
		for _, ts := range timestamps {
			if now.Sub(ts) < maxAge {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(categories, category)
		} else {
			categories[category] = kept
		}
	}
	if len(categories) == 0 {
		delete(l.users, userID)
	}
}
