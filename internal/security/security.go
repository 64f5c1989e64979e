package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/chainaudit/repo-judge/internal/errors"
)

// Config holds security configuration
type Config struct {
	MaxURLLength      int           `json:"max_url_length"`
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// DefaultConfig returns secure defaults
func DefaultConfig() Config {
	return Config{
		MaxURLLength:      500,
		MaxRequestsPerMin: 60,
		RequestTimeout:    60 * time.Second,
	}
}

// Middleware provides security middleware for the HTTP surface
type Middleware struct {
	config     Config
	ipLimiters map[string]*rate.Limiter
	mu         sync.Mutex
}

// NewMiddleware creates a security middleware instance
func NewMiddleware(config Config) *Middleware {
	m := &Middleware{
		config:     config,
		ipLimiters: make(map[string]*rate.Limiter),
	}

	go m.cleanupLimiters()

	return m
}

// ValidateRepoURL performs input validation on a user-supplied repository URL
func (m *Middleware) ValidateRepoURL(input string) error {
	if len(input) > m.config.MaxURLLength {
		return fmt.Errorf("repository URL exceeds maximum length of %d characters", m.config.MaxURLLength)
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("repository URL contains invalid UTF-8")
	}

	if strings.ContainsRune(input, 0) {
		return fmt.Errorf("repository URL contains null bytes")
	}

	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return fmt.Errorf("repository URL must be an http(s) URL")
	}

	return nil
}

// SecurityHeaders sets conservative response headers
func (m *Middleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Next()
}

// RequestTimeout attaches a deadline to every request context
func (m *Middleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), m.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// RateLimitByIP enforces the per-IP request budget
func (m *Middleware) RateLimitByIP(c *gin.Context) {
	limiter := m.limiterFor(c.ClientIP())

	if !limiter.Allow() {
		appErr := apperrors.NewRateLimitError("60s")
		apperrors.LogError(c, appErr)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, appErr)
		return
	}

	c.Next()
}

func (m *Middleware) limiterFor(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, ok := m.ipLimiters[ip]
	if !ok {
		perSecond := rate.Limit(float64(m.config.MaxRequestsPerMin) / 60.0)
		limiter = rate.NewLimiter(perSecond, m.config.MaxRequestsPerMin/6)
		m.ipLimiters[ip] = limiter
	}
	return limiter
}

// cleanupLimiters periodically drops idle per-IP limiters so the map does not
// grow without bound
func (m *Middleware) cleanupLimiters() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		m.ipLimiters = make(map[string]*rate.Limiter)
		m.mu.Unlock()
	}
}
