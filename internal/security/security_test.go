package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestValidateRepoURL(t *testing.T) {
	m := NewMiddleware(DefaultConfig())

	tests := []struct {
		name     string
		input    string
		hasError bool
	}{
		{
			name:  "accepts a normal https URL",
			input: "https://github.com/octocat/demo",
		},
		{
			name:  "accepts a plain http URL",
			input: "http://github.com/octocat/demo",
		},
		{
			name:     "rejects other schemes",
			input:    "ftp://github.com/octocat/demo",
			hasError: true,
		},
		{
			name:     "rejects scheme-less input",
			input:    "github.com/octocat/demo",
			hasError: true,
		},
		{
			name:     "rejects over-long URLs",
			input:    "https://github.com/" + strings.Repeat("a", 500),
			hasError: true,
		},
		{
			name:     "rejects null bytes",
			input:    "https://github.com/octo\x00cat/demo",
			hasError: true,
		},
		{
			name:     "rejects invalid UTF-8",
			input:    "https://github.com/\xff\xfe/demo",
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateRepoURL(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewMiddleware(DefaultConfig())
	r := gin.New()
	r.Use(m.SecurityHeaders)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// one request per minute with no burst headroom beyond the first
	m := NewMiddleware(Config{
		MaxURLLength:      500,
		MaxRequestsPerMin: 6,
		RequestTimeout:    DefaultConfig().RequestTimeout,
	})

	r := gin.New()
	r.Use(m.RateLimitByIP)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Contains(t, statuses, http.StatusTooManyRequests)
}

func TestRateLimitIsPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewMiddleware(Config{
		MaxURLLength:      500,
		MaxRequestsPerMin: 6,
		RequestTimeout:    DefaultConfig().RequestTimeout,
	})

	r := gin.New()
	r.Use(m.RateLimitByIP)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// exhaust the first address
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		r.ServeHTTP(w, req)
	}

	// a different address still gets through
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
