package monitoring

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with domain-specific helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON structured logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// AuditLogger logs one completed repository audit
func (l *Logger) AuditLogger(owner, repo string, overall float64, filesSelected int, duration time.Duration, cacheHit bool) {
	l.Info("Audit Completed",
		"owner", owner,
		"repo", repo,
		"overall_score", overall,
		"files_selected", filesSelected,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// ProviderLogger logs calls to the hosting provider API
func (l *Logger) ProviderLogger(method, endpoint string, statusCode int, duration time.Duration, success bool) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}

	l.Log(context.Background(), level, "Provider API Call",
		"method", method,
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}
