package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/puffbuddy/backend/internal/config"
	"github.com/puffbuddy/backend/internal/container"
	"github.com/puffbuddy/backend/internal/handlers"
	"github.com/puffbuddy/backend/internal/middleware"
)

// Redis-backed limit on sign-in endpoints, shared by every instance
const (
	authWindowMax = 20
	authWindow    = time.Minute
)

// newRouter builds the gin engine with middleware, operational endpoints
// and the /api/v1 routes
func newRouter(cfg *config.Config, c *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	r.Use(cors.New(corsConfig))

	// websocket upgrades must not be gzip-wrapped
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/ws"})))

	if cfg.OTelEnabled {
		r.Use(middleware.TracingMiddleware(serviceName)...)
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", healthHandler(c))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimit := []gin.HandlerFunc{middleware.RateLimitAuth()}
	if store := c.Cache(); store != nil {
		authLimit = append(authLimit, middleware.RedisRateLimitMiddleware(store, "auth", authWindowMax, authWindow))
	}

	api := r.Group("/api/v1", middleware.RateLimit())
	handlers.RegisterRoutes(api, c.Handlers(), c.AuthHandlers(), handlers.RouteOptions{
		RequireAuth: middleware.RequireAuth(c.Auth()),
		AuthLimit:   authLimit,
		UploadLimit: []gin.HandlerFunc{middleware.RateLimitUpload()},
		WebSocket:   c.WebSocket(),
	})

	return r
}

// healthHandler reports the service and database state
func healthHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status, code := "ok", http.StatusOK
		dbStatus := "ok"

		sqlDB, err := c.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(ctx.Request.Context())
		}
		if err != nil {
			status, code, dbStatus = "degraded", http.StatusServiceUnavailable, err.Error()
		}

		ctx.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
			"database":  dbStatus,
		})
	}
}
