package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chainaudit/repo-judge/internal/adapters"
	"github.com/chainaudit/repo-judge/internal/analysis"
	"github.com/chainaudit/repo-judge/internal/cache"
	apperrors "github.com/chainaudit/repo-judge/internal/errors"
	"github.com/chainaudit/repo-judge/internal/export"
	"github.com/chainaudit/repo-judge/internal/history"
	"github.com/chainaudit/repo-judge/internal/monitoring"
	"github.com/chainaudit/repo-judge/internal/security"
	"github.com/chainaudit/repo-judge/internal/types"
)

// serverDeps bundles everything the HTTP surface needs
type serverDeps struct {
	analyzer       *analysis.Analyzer
	github         *adapters.GitHubClient
	store          *history.Store
	reportCache    *cache.Cache
	metrics        *monitoring.Metrics
	logger         *monitoring.Logger
	security       *security.Middleware
	allowedOrigins []string
}

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	githubToken := os.Getenv("GITHUB_TOKEN")
	port := getEnvOrDefault("PORT", "8080")
	allowedOrigins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")

	// Initialize history store
	store, err := history.NewStore(dataDir)
	if err != nil {
		slog.Error("Failed to initialize history store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Create analyzer backed by the GitHub client
	githubClient := adapters.NewGitHubClient(githubToken)

	r := setupRouter(serverDeps{
		analyzer:       analysis.NewAnalyzer(githubClient),
		github:         githubClient,
		store:          store,
		reportCache:    cache.New(15 * time.Minute),
		metrics:        monitoring.NewMetrics(),
		logger:         monitoring.NewLogger(),
		security:       security.NewMiddleware(security.DefaultConfig()),
		allowedOrigins: allowedOrigins,
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func setupRouter(deps serverDeps) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins: deps.allowedOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-GitHub-Token"},
		MaxAge:       12 * time.Hour,
	}))

	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	r.Use(deps.security.SecurityHeaders)
	r.Use(deps.security.RequestTimeout)
	r.Use(deps.security.RateLimitByIP)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"metrics":   deps.metrics.GetStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.reportCache.Stats())
	})

	r.POST("/analyze", func(c *gin.Context) {
		start := time.Now()
		deps.metrics.IncrementRequest()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var req types.AnalyzeRequest
		if err := c.BindJSON(&req); err != nil {
			deps.metrics.IncrementError()
			appErr := apperrors.NewInvalidReferenceError("request body must include repo_url")
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		req.RepoURL = strings.TrimSpace(req.RepoURL)
		if err := deps.security.ValidateRepoURL(req.RepoURL); err != nil {
			deps.metrics.IncrementError()
			appErr := apperrors.NewInvalidReferenceError(err.Error())
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		// The cache key never includes the token
		cacheKey := cache.Key(req.RepoURL + "|" + req.ProjectName)
		if data, ok := deps.reportCache.Get(cacheKey); ok {
			deps.metrics.IncrementCacheHit()

			var cached analysis.ScoreData
			if err := json.Unmarshal(data, &cached); err == nil {
				deps.logger.AuditLogger(cached.Owner, cached.Repo, cached.OverallScore, 0, time.Since(start), true)
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		deps.metrics.IncrementCacheMiss()
		deps.metrics.IncrementProviderCalls()

		scoreData, err := deps.analyzer.Analyze(ctx, req.RepoURL, req.ProjectName, req.GitHubToken)
		if err != nil {
			deps.metrics.IncrementError()
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		deps.metrics.IncrementAudits()

		if err := deps.store.Save(scoreData); err != nil {
			// History is best-effort; the analysis result still stands
			slog.Error("Failed to persist score history", "error", err)
		}

		if data, err := json.Marshal(scoreData); err == nil {
			deps.reportCache.Set(cacheKey, data)
		}

		deps.logger.AuditLogger(scoreData.Owner, scoreData.Repo, scoreData.OverallScore, 0, time.Since(start), false)
		c.JSON(http.StatusOK, scoreData)
	})

	r.GET("/history", func(c *gin.Context) {
		results, err := deps.store.List()
		if err != nil {
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"entries": results,
			"total":   len(results),
		})
	})

	r.DELETE("/history", func(c *gin.Context) {
		if err := deps.store.Clear(); err != nil {
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "history cleared"})
	})

	r.GET("/export/:format", func(c *gin.Context) {
		format := c.Param("format")
		owner := c.Query("owner")
		repo := c.Query("repo")

		results, err := deps.store.List()
		if err != nil {
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		var target *analysis.ScoreData
		for i := range results {
			if owner != "" && (results[i].Owner != owner || results[i].Repo != repo) {
				continue
			}
			target = &results[i]
			break
		}
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no stored analysis to export"})
			return
		}

		var payload []byte
		var contentType string
		switch format {
		case "json":
			payload, err = export.JSON(*target)
			contentType = "application/json"
		case "yaml":
			payload, err = export.YAML(*target)
			contentType = "text/yaml"
		case "csv":
			payload = export.CSV(*target)
			contentType = "text/csv"
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, yaml or csv"})
			return
		}
		if err != nil {
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.Header("Content-Disposition", "attachment; filename="+export.Filename(*target, format))
		c.Data(http.StatusOK, contentType, payload)
	})

	// Bounded repository browser; not part of the scoring pipeline
	r.GET("/tree", func(c *gin.Context) {
		repoURL := c.Query("repo_url")
		ref, err := analysis.ParseRepoURL(repoURL)
		if err != nil {
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		entries := deps.github.ListTree(c.Request.Context(), ref.Owner, ref.Name, c.Query("path"), c.GetHeader("X-GitHub-Token"))
		c.JSON(http.StatusOK, gin.H{
			"owner":   ref.Owner,
			"repo":    ref.Name,
			"entries": entries,
			"total":   len(entries),
		})
	})

	return r
}

// getEnvOrDefault reads an environment variable with a fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
