package server

import (
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client IP
type clientLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

func newClientLimiter(requestsPerSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether clientIP may make a request now
func (c *clientLimiter) Allow(clientIP string) bool {
	return c.getLimiter(clientIP).Allow()
}

// getLimiter gets or creates the limiter for a client IP
func (c *clientLimiter) getLimiter(clientIP string) *rate.Limiter {
	c.mu.RLock()
	limiter, exists := c.limiters[clientIP]
	c.mu.RUnlock()

	if exists {
		return limiter
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := c.limiters[clientIP]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(c.limit, c.burst)
	c.limiters[clientIP] = limiter
	return limiter
}
