// Package container holds the PuffBuddy services built at startup and
// hands them to the HTTP layer. Optional services stay nil when they are not
// configured and the handlers fall back accordingly.
package container

import (
	"context"
	"sync"
	"time"

	"github.com/puffbuddy/backend/internal/auth"
	"github.com/puffbuddy/backend/internal/cache"
	"github.com/puffbuddy/backend/internal/email"
	"github.com/puffbuddy/backend/internal/handlers"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/puffbuddy/backend/internal/storage"
	"github.com/puffbuddy/backend/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	// Core infrastructure
	db     *gorm.DB
	logger *zap.Logger
	cache  cache.Store

	// Services
	auth      auth.AuthServiceInterface
	images    storage.ImageStore
	search    search.Index
	email     email.Sender
	hub       *websocket.Hub
	wsHandler *websocket.Handler

	statsLocation *time.Location

	// Lifecycle hooks
	cleanupFuncs []func(context.Context) error
	mu           sync.RWMutex
}

// New creates an empty container
func New() *Container {
	return &Container{
		cleanupFuncs:  make([]func(context.Context) error, 0),
		statsLocation: time.UTC,
	}
}

// ============================================================================
// CORE INFRASTRUCTURE
// ============================================================================

// SetDB registers the database connection
func (c *Container) SetDB(db *gorm.DB) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	return c
}

// DB returns the database connection
func (c *Container) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// SetLogger registers the logger
func (c *Container) SetLogger(l *zap.Logger) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
	return c
}

// Logger returns the logger, defaulting to the global one
func (c *Container) Logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggerLocked()
}

func (c *Container) loggerLocked() *zap.Logger {
	if c.logger == nil {
		return logger.Log
	}
	return c.logger
}

// SetCache registers the feed and leaderboard cache
func (c *Container) SetCache(store cache.Store) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = store
	return c
}

// Cache returns the cache or nil
func (c *Container) Cache() cache.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// ============================================================================
// SERVICES
// ============================================================================

// SetAuthService registers the authentication service
func (c *Container) SetAuthService(service auth.AuthServiceInterface) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = service
	return c
}

// Auth returns the authentication service
func (c *Container) Auth() auth.AuthServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// SetImageStore registers photo storage
func (c *Container) SetImageStore(images storage.ImageStore) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = images
	return c
}

// Images returns photo storage or nil
func (c *Container) Images() storage.ImageStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.images
}

// SetSearchIndex registers the Elasticsearch index
func (c *Container) SetSearchIndex(index search.Index) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = index
	return c
}

// Search returns the search index or nil
func (c *Container) Search() search.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search
}

// SetEmailSender registers the password reset mailer
func (c *Container) SetEmailSender(sender email.Sender) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = sender
	return c
}

// SetWebSocket registers the realtime hub and its HTTP handler
func (c *Container) SetWebSocket(hub *websocket.Hub, handler *websocket.Handler) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hub = hub
	c.wsHandler = handler
	return c
}

// WebSocket returns the websocket HTTP handler or nil
func (c *Container) WebSocket() *websocket.Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wsHandler
}

// SetStatsLocation sets the timezone for calendar-day streaks
func (c *Container) SetStatsLocation(loc *time.Location) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	if loc != nil {
		c.statsLocation = loc
	}
	return c
}

// ============================================================================
// HTTP LAYER
// ============================================================================

// Handlers builds the API handlers with every configured optional service
func (c *Container) Handlers() *handlers.Handlers {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := handlers.NewHandlers(c.db)
	if c.images != nil {
		h.SetImageStore(c.images)
	}
	if c.cache != nil {
		h.SetCache(c.cache)
	}
	if c.hub != nil {
		h.SetNotifier(c.hub)
	}
	if c.search != nil {
		h.SetSearchIndex(c.search)
	}
	h.SetStatsLocation(c.statsLocation)
	return h
}

// AuthHandlers builds the authentication handlers
func (c *Container) AuthHandlers() *handlers.AuthHandlers {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return handlers.NewAuthHandlers(c.auth, c.email)
}

// ============================================================================
// LIFECYCLE MANAGEMENT
// ============================================================================

// OnCleanup registers a function to run at shutdown. Functions run in
// reverse order of registration.
func (c *Container) OnCleanup(fn func(context.Context) error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup runs every registered cleanup function and returns the first error
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](ctx); err != nil {
			c.loggerLocked().Error("Cleanup function failed", zap.Int("index", i), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	c.cleanupFuncs = c.cleanupFuncs[:0]
	return first
}

// ============================================================================
// VALIDATION
// ============================================================================

// Validate checks that the required dependencies are registered and logs
// which optional ones are disabled
func (c *Container) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missing []string
	if c.db == nil {
		missing = append(missing, "database")
	}
	if c.auth == nil {
		missing = append(missing, "auth service")
	}
	if len(missing) > 0 {
		return NewInitializationError("Missing required dependencies", missing)
	}

	optional := []struct {
		name    string
		enabled bool
	}{
		{"Redis cache", c.cache != nil},
		{"Image storage", c.images != nil},
		{"Elasticsearch search", c.search != nil},
		{"Email", c.email != nil},
		{"Realtime hub", c.hub != nil},
	}
	for _, dep := range optional {
		if !dep.enabled {
			c.loggerLocked().Warn("Optional service disabled", zap.String("service", dep.name))
		}
	}
	return nil
}
