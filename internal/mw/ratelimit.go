package mw

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter stores a rate limiter for each IP address.
type IPRateLimiter struct {
	ips     map[string]*visitor
	mu      sync.Mutex
	r       rate.Limit
	b       int
	maxIdle time.Duration
	now     func() time.Time
}

// NewIPRateLimiter creates a new IPRateLimiter. Limiters unused for maxIdle
// are dropped; maxIdle <= 0 keeps them forever.
func NewIPRateLimiter(r rate.Limit, b int, maxIdle time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips:     make(map[string]*visitor),
		r:       r,
		b:       b,
		maxIdle: maxIdle,
		now:     time.Now,
	}
}

// GetLimiter returns the rate limiter for an IP address, creating it on
// first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	v, exists := i.ips[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Sweep drops the limiters idle for longer than maxIdle and returns how many
// remain.
func (i *IPRateLimiter) Sweep() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.maxIdle > 0 {
		cutoff := i.now().Add(-i.maxIdle)
		for ip, v := range i.ips {
			if v.lastSeen.Before(cutoff) {
				delete(i.ips, ip)
			}
		}
	}
	return len(i.ips)
}

// StartSweeper calls Sweep every interval until ctx is done.
func (i *IPRateLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				i.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
