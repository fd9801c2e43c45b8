package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/auth"
	"github.com/puffbuddy/backend/internal/cache"
	"github.com/puffbuddy/backend/internal/config"
	"github.com/puffbuddy/backend/internal/container"
	"github.com/puffbuddy/backend/internal/database"
	"github.com/puffbuddy/backend/internal/email"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/puffbuddy/backend/internal/storage"
	"github.com/puffbuddy/backend/internal/telemetry"
	"github.com/puffbuddy/backend/internal/validation"
	"github.com/puffbuddy/backend/internal/websocket"
	"go.uber.org/zap"
)

const serviceName = "puffbuddy-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger is not configured yet
		_ = logger.Initialize("info", "")
		logger.FatalWithFields("Invalid configuration", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("PuffBuddy server starting",
		zap.String("environment", cfg.Environment),
		zap.String("database_driver", cfg.DatabaseDriver),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	c := container.New().SetLogger(logger.Log).SetStatsLocation(cfg.StatsLocation)
	validator := validation.NewServiceValidator()

	// Database
	dbOpts := database.ResolveOptions(cfg.DatabaseDriver, cfg.DatabaseURL, os.Getenv)
	if err := database.Initialize(dbOpts); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}
	c.SetDB(database.DB).OnCleanup(func(ctx context.Context) error {
		return database.Close()
	})
	validator.Register("database", func(ctx context.Context) error {
		return database.Health()
	})

	// Tracing
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
	})
	if err != nil {
		logger.WarnWithFields("Tracing disabled", err)
	} else if tp != nil {
		c.OnCleanup(tp.Shutdown)
		logger.Log.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.OTelEndpoint))
	}

	// Redis cache; the in-memory store backs a single instance without it
	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, using in-memory cache", err)
			c.SetCache(cache.NewMemoryStore())
		} else {
			c.SetCache(redisClient).OnCleanup(func(ctx context.Context) error {
				return redisClient.Close()
			})
			validator.Register("redis", redisClient.Ping)
		}
	} else {
		c.SetCache(cache.NewMemoryStore())
	}

	// Photo storage
	if cfg.StorageEnabled() {
		uploader, err := storage.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket, cfg.CDNBaseURL)
		if err != nil {
			logger.WarnWithFields("Failed to initialize S3 uploader, photo uploads disabled", err)
		} else {
			checkCtx, cancel := context.WithTimeout(context.Background(), validation.CheckTimeout)
			if err := uploader.CheckBucketAccess(checkCtx); err != nil {
				logger.WarnWithFields("S3 bucket access check failed", err)
			}
			cancel()
			c.SetImageStore(uploader)
			validator.Register("s3", uploader.CheckBucketAccess)
		}
	}

	// Password reset email
	if cfg.SESFromEmail != "" {
		emailService, err := email.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, "PuffBuddy", cfg.AppBaseURL)
		if err != nil {
			logger.WarnWithFields("Failed to initialize SES, password reset email disabled", err)
		} else {
			c.SetEmailSender(emailService)
		}
	}

	// Search
	if cfg.ElasticsearchURL != "" {
		searchClient, err := search.NewClient(cfg.ElasticsearchURL)
		if err != nil {
			logger.WarnWithFields("Elasticsearch unavailable, search falls back to the database", err)
		} else {
			initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := searchClient.InitializeIndices(initCtx); err != nil {
				logger.WarnWithFields("Failed to initialize search indices", err)
			}
			cancel()
			c.SetSearchIndex(searchClient)
			validator.Register("elasticsearch", searchClient.Ping)
		}
	}

	// Auth
	authService := auth.NewService(database.DB, cfg.JWTSecret, config.LoadGoogleOAuthConfig())
	c.SetAuthService(authService)

	// Realtime
	hub := websocket.NewHub()
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, authService, cfg.CORSOrigins)
	c.SetWebSocket(hub, wsHandler).OnCleanup(wsHandler.Shutdown)

	if err := c.Validate(); err != nil {
		logger.FatalWithFields("Dependency check failed", err)
	}
	if err := validator.ValidateServices(context.Background()); err != nil {
		logger.FatalWithFields("Required service check failed", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, c),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("PuffBuddy backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if err := c.Cleanup(ctx); err != nil {
		logger.WarnWithFields("Cleanup finished with errors", err)
	}

	logger.Log.Info("Server exited")
}
