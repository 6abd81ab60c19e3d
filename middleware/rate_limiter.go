// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   endpointLimit
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:        make(map[string]*rate.Limiter),
		blockedIPs: make(map[string]time.Time),
		// 10 requests per second with bursts of 20
		defaultLimit:   endpointLimit{limit: rate.Every(100 * time.Millisecond), burst: 20},
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
		now:            time.Now,
	}

	// Credential endpoints are limited per route to slow down brute force.
	limiter.SetEndpointLimit("/api/auth/login", rate.Every(2*time.Second), 5)
	limiter.SetEndpointLimit("/api/auth/register", rate.Every(500*time.Millisecond), 5)
	limiter.SetEndpointLimit("/api/vendor/onboarding/complete", rate.Every(2*time.Second), 5)

	return limiter
}

func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

// Run drops expired blocks until ctx is done.
func (r *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanupBlockedIPs()
		}
	}
}

func (r *RateLimiter) cleanupBlockedIPs() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for key, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, key)
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Provider webhooks are authenticated by signature and may burst.
			if strings.HasPrefix(c.Request().URL.Path, "/api/payments/webhook/") {
				return next(c)
			}

			path := c.Path()
			ip := c.RealIP()

			r.mu.Lock()
			limit, exists := r.endpointLimits[path]
			if !exists {
				limit = r.defaultLimit
			}
			// Strict endpoints get their own bucket so browsing does not eat
			// into login attempts.
			key := ip
			if exists {
				key = ip + "|" + path
			}

			if blockUntil, blocked := r.blockedIPs[key]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, "IP address blocked due to too many requests", blockUntil)
				}
				delete(r.blockedIPs, key)
				delete(r.ips, key)
			}

			limiter, ok := r.ips[key]
			if !ok {
				limiter = rate.NewLimiter(limit.limit, limit.burst)
				r.ips[key] = limiter
			}
			if !limiter.AllowN(r.now(), 1) {
				blockUntil := r.now().Add(r.blockDuration)
				r.blockedIPs[key] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, "Too many requests", blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, message string, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: message,
		Data:    map[string]string{"retryAfter": retryAfter.Format(time.RFC3339)},
	})
}
