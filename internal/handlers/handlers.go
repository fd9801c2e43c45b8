package handlers

import (
	"context"
	"time"

	"github.com/puffbuddy/backend/internal/cache"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/repository"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/puffbuddy/backend/internal/storage"
	"github.com/puffbuddy/backend/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Limits shared by several endpoints
const (
	MaxContentLength   = 2000
	FeedScanSize       = 100
	UserPostsLimit     = 50
	PuffListLimit      = 50
	NotificationsLimit = 50
	SearchLimit        = search.MaxResults
	randomTagCount     = 3
)

// Handlers contains all HTTP handlers for the API.
// Optional dependencies stay nil when their backing service is not configured.
type Handlers struct {
	db     *gorm.DB
	social repository.SocialRepository

	images   storage.ImageStore
	cache    cache.Store
	notifier websocket.Notifier
	search   search.Index

	statsLocation *time.Location
	now           func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB) *Handlers {
	return &Handlers{
		db:            db,
		social:        repository.NewSocialRepository(db),
		statsLocation: time.UTC,
		now:           time.Now,
	}
}

// SetImageStore enables photo uploads
func (h *Handlers) SetImageStore(images storage.ImageStore) {
	h.images = images
}

// SetCache enables the feed and leaderboard caches
func (h *Handlers) SetCache(store cache.Store) {
	h.cache = store
}

// SetNotifier enables realtime pushes
func (h *Handlers) SetNotifier(notifier websocket.Notifier) {
	h.notifier = notifier
}

// SetSearchIndex routes profile and strain search through Elasticsearch
func (h *Handlers) SetSearchIndex(index search.Index) {
	h.search = index
}

// SetStatsLocation sets the timezone used for calendar-day streaks
func (h *Handlers) SetStatsLocation(loc *time.Location) {
	if loc != nil {
		h.statsLocation = loc
	}
}

// imageURL resolves a storage key to a public URL
func (h *Handlers) imageURL(key *string) *string {
	if key == nil || *key == "" || h.images == nil {
		return nil
	}
	url := h.images.URL(*key)
	return &url
}

// deleteImage removes a stored object, logging failures
func (h *Handlers) deleteImage(ctx context.Context, key *string) {
	if key == nil || *key == "" || h.images == nil {
		return
	}
	if err := h.images.Delete(ctx, *key); err != nil {
		logger.WarnWithFields("Failed to delete stored image", err, zap.String("key", *key))
	}
}

// createNotification stores a notification inside tx. Push it with
// pushNotification once the transaction commits.
func createNotification(tx *gorm.DB, n *models.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return err
	}
	metrics.App().NotificationsCreated.WithLabelValues(n.Type).Inc()
	return nil
}

// pushNotification sends a stored notification to its owner
func (h *Handlers) pushNotification(n *models.Notification) {
	if n == nil || h.notifier == nil {
		return
	}
	payload := websocket.NotificationPayload{
		ID:        n.ID,
		Type:      n.Type,
		ActorID:   n.FromUserID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
	if n.PostID != nil {
		payload.PostID = *n.PostID
	}
	if n.CommentID != nil {
		payload.CommentID = *n.CommentID
	}
	h.notifier.NotifyUser(n.UserID, websocket.NewMessage(websocket.MessageTypeNotification, payload))
}

// pushToFriends sends msg to the accepted friends of userID
func (h *Handlers) pushToFriends(ctx context.Context, userID string, msg *websocket.Message) {
	if h.notifier == nil {
		return
	}
	friends, err := h.social.FriendIDs(ctx, userID)
	if err != nil {
		logger.WarnWithFields("Failed to load friends for push", err, logger.WithUserID(userID))
		return
	}
	h.notifier.NotifyUsers(friends, msg)
}

// invalidateFeeds drops the cached feeds of the given users
func (h *Handlers) invalidateFeeds(ctx context.Context, userIDs ...string) {
	if h.cache == nil {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, cache.FeedKey(id))
	}
	cache.Invalidate(ctx, h.cache, keys...)
}

// displayName returns the caller's display name or "" when they have no profile
func (h *Handlers) displayName(ctx context.Context, userID string) string {
	profile, err := h.social.GetProfile(ctx, userID)
	if err != nil {
		return ""
	}
	return profile.DisplayName
}
