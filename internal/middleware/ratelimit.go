package middleware

import (
	"net/http"
	"sync"
	"time"

	"titanax/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*rateWindow
}

func (rl *rateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[key]
	if !ok || now.After(w.resetAt) {
		rl.clients[key] = &rateWindow{count: 1, resetAt: now.Add(rl.window)}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// RateLimit applies a fixed-window per-client-IP limit. Credential-guessing
// endpoints (login, signup, password reset) are the intended targets.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*rateWindow),
	}

	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
