// Package api wires together all HTTP routes for the audit log service.
//
// Probes (/health, /ready, /version) sit outside /api/v1 and are never rate limited
// or authenticated. Every /api/v1 route is rate limited per client IP and, when
// auth.jwt.enabled is set, requires a bearer token.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/publink/publink-logs/internal/api/logs"
	"github.com/publink/publink-logs/internal/api/organizations"
	"github.com/publink/publink-logs/internal/auditlog"
	"github.com/publink/publink-logs/internal/auth"
	"github.com/publink/publink-logs/internal/cache"
	"github.com/publink/publink-logs/internal/config"
	"github.com/publink/publink-logs/internal/db/repositories"
	"github.com/publink/publink-logs/internal/middleware"
)

// Version is reported by /version and the version subcommand
const Version = "0.1.0"

// BackgroundServices holds references to long-running goroutines started by NewRouter
// so they can be stopped during graceful shutdown.
type BackgroundServices struct {
	memoryLimiter *middleware.MemoryLimiter
}

// Shutdown stops background goroutines
func (b *BackgroundServices) Shutdown() {
	if b.memoryLimiter != nil {
		b.memoryLimiter.Stop()
	}
}

// healthChecker is satisfied by *cache.Client
type healthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. redisClient may be nil, in which
// case the organisation list is not cached and rate limiting is per process.
func NewRouter(cfg *config.Config, db *sql.DB, redisClient *cache.Client) (*gin.Engine, *BackgroundServices, error) {
	router := gin.New()
	bg := &BackgroundServices{}

	sqlxDB := sqlx.NewDb(db, "postgres")
	auditLogRepo := repositories.NewAuditLogRepository(sqlxDB)
	orgRepo := repositories.NewOrganizationRepository(sqlxDB)

	engine := auditlog.NewEngine(auditLogRepo)

	var (
		orgCache auditlog.OrganizationCache
		redis    healthChecker
	)
	if redisClient != nil {
		orgCache = cache.NewOrganizationCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.OrganizationsTTL)
		redis = redisClient
	}
	directory := auditlog.NewDirectory(orgRepo, orgCache)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig(cfg.Security.TLS.Enabled)))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db, redis))
	router.GET("/version", versionHandler())

	apiV1 := router.Group("/api/v1")

	if cfg.Security.RateLimiting.Enabled {
		limitCfg := middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Security.RateLimiting.RequestsPerMinute,
			BurstSize:         cfg.Security.RateLimiting.Burst,
		}
		if redisClient != nil {
			limiter := middleware.NewRedisLimiter(redisClient.Client, limitCfg, cfg.Cache.KeyPrefix)
			apiV1.Use(middleware.RateLimitMiddleware(limiter, "redis"))
		} else {
			bg.memoryLimiter = middleware.NewMemoryLimiter(limitCfg)
			apiV1.Use(middleware.RateLimitMiddleware(bg.memoryLimiter, "memory"))
		}
	}

	if cfg.Auth.JWT.Enabled {
		validator, err := auth.NewTokenValidator(cfg.Auth.JWT)
		if err != nil {
			bg.Shutdown()
			return nil, nil, fmt.Errorf("failed to create token validator: %w", err)
		}
		apiV1.Use(middleware.JWTAuthMiddleware(validator))
	}

	logHandlers := logs.NewHandler(engine, cfg.API)
	orgHandlers := organizations.NewHandler(directory)
	{
		apiV1.GET("/logs", logHandlers.ListLogs)
		apiV1.GET("/logs/all", logHandlers.ListAllLogs)
		apiV1.GET("/organisations", orgHandlers.ListOrganizations)
	}

	return router, bg, nil
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic. Checks the database and, when configured, Redis.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, checks, time"
// @Failure      503  {object}  map[string]interface{}  "ready: false, checks, error"
// @Router       /ready [get]
// readinessHandler reports not ready when the database or the configured Redis is down.
// redis may be nil.
func readinessHandler(db *sql.DB, redis healthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.PingContext(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if redis != nil {
			if err := redis.Health(c.Request.Context()); err != nil {
				checks["redis"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"ready":  false,
					"checks": checks,
					"error":  "redis not ready",
				})
				return
			}
			checks["redis"] = "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware emits one structured record per request. The output format
// follows the global slog handler installed by telemetry.SetupLogger.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logRequest(c, time.Since(start), path, query)
	}
}

func logRequest(c *gin.Context, latency time.Duration, path, query string) {
	status := c.Writer.Status()
	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	slog.LogAttrs(
		c.Request.Context(),
		level,
		"http request",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.String("query", query),
		slog.Int("status", status),
		slog.Int("size", c.Writer.Size()),
		slog.Duration("latency", latency),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", c.GetString(middleware.RequestIDKey)),
		slog.String("user_agent", c.Request.UserAgent()),
	)
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	methods := "GET, OPTIONS"
	if len(cfg.Security.CORS.AllowedMethods) > 0 {
		methods = strings.Join(cfg.Security.CORS.AllowedMethods, ", ")
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
