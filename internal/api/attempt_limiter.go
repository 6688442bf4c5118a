package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// attemptLimiter counts recent attempts per key inside a sliding window.
type attemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newAttemptLimiter() *attemptLimiter {
	return &attemptLimiter{
		attempts: make(map[string][]time.Time),
	}
}

// tryReserve records an attempt at now unless limit attempts already fall
// inside the window. Checking and recording happen under one lock.
func (limiter *attemptLimiter) tryReserve(key string, now time.Time, limit int, window time.Duration) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now, window)
	if len(pruned) >= limit {
		return false
	}
	limiter.attempts[key] = append(pruned, now)
	return true
}

// release drops one attempt recorded at stamp, returning the slot.
func (limiter *attemptLimiter) release(key string, stamp time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	values := limiter.attempts[key]
	for index, value := range values {
		if value.Equal(stamp) {
			values = append(values[:index], values[index+1:]...)
			break
		}
	}
	if len(values) == 0 {
		delete(limiter.attempts, key)
		return
	}
	limiter.attempts[key] = values
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return []time.Time{}
	}

	threshold := now.Add(-window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return []time.Time{}
	}

	limiter.attempts[key] = pruned
	return pruned
}

// reportLimiterKey prefers the anonymous device id. Requests that arrived
// without a valid device cookie are keyed by client address, so dropping the
// cookie does not reset the quota.
func reportLimiterKey(c *fiber.Ctx) string {
	issued, _ := c.Locals(contextDeviceIssuedKey).(bool)
	if deviceID := currentDeviceID(c); deviceID != "" && !issued {
		return "device:" + deviceID
	}
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return "ip:" + key
}
