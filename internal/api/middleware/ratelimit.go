package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// FixedWindowLimiter counts requests per client address inside a fixed
// window. When the window rolls over, all counters reset.
type FixedWindowLimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	limit       int
	window      time.Duration
	windowStart time.Time
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		counts:      make(map[string]int),
		limit:       limit,
		window:      window,
		windowStart: time.Now(),
	}
}

// Allow counts one request from addr and reports whether it is within the
// limit for the current window.
func (l *FixedWindowLimiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.windowStart) >= l.window {
		l.counts = make(map[string]int)
		l.windowStart = now
	}

	if l.counts[addr] >= l.limit {
		return false
	}
	l.counts[addr]++
	return true
}

// RateLimit rejects clients that exceed the per-window request budget.
func RateLimit(limiter *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
