package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiters keeps one token bucket per client IP.
type ipLimiters struct {
	mu   sync.Mutex
	ips  map[string]*rate.Limiter
	rate rate.Limit
	b    int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.ips[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.b)
		l.ips[ip] = limiter
	}
	return limiter
}

// RateLimiter is a middleware for IP-based rate limiting on the public
// subscribe/heartbeat endpoints.
func RateLimiter(r rate.Limit, burst int) gin.HandlerFunc {
	limiters := &ipLimiters{
		ips:  make(map[string]*rate.Limiter),
		rate: r,
		b:    burst,
	}
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "too many requests",
			})
			return
		}
		c.Next()
	}
}
