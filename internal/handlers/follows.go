package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/dto"
	apierrors "github.com/puffbuddy/backend/internal/errors"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/util"
	"gorm.io/gorm"
)

// FollowUser follows another user
// POST /api/v1/users/:user_id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("user_id")
	if targetID == userID {
		util.RespondBadRequest(c, "Cannot follow yourself")
		return
	}

	ctx := c.Request.Context()
	var target models.User
	if err := h.db.WithContext(ctx).Select("id").First(&target, "id = ?", targetID).Error; err != nil {
		util.HandleDBError(c, err, "User")
		return
	}

	var existing int64
	if err := h.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", userID, targetID).
		Count(&existing).Error; err != nil {
		util.RespondInternalError(c, "Failed to check follow", err)
		return
	}
	if existing > 0 {
		util.RespondConflict(c, "Already following this user")
		return
	}

	follow := models.Follow{FollowerID: userID, FollowingID: targetID}
	notification := models.Notification{
		UserID:     targetID,
		FromUserID: userID,
		Type:       models.NotificationFollow,
		Message:    "started following you",
	}
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&follow).Error; err != nil {
			return err
		}
		return createNotification(tx, &notification)
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to follow user", err)
		return
	}

	h.pushNotification(&notification)
	h.invalidateFeeds(ctx, userID)
	metrics.App().FollowsTotal.WithLabelValues("follow").Inc()

	c.JSON(http.StatusCreated, gin.H{"follow": follow})
}

// UnfollowUser stops following a user
// DELETE /api/v1/users/:user_id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result := h.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userID, c.Param("user_id")).
		Delete(&models.Follow{})
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to unfollow user", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		util.RespondWithAPIError(c, apierrors.New(apierrors.ErrNotFound, "Not following this user"))
		return
	}

	h.invalidateFeeds(ctx, userID)
	metrics.App().FollowsTotal.WithLabelValues("unfollow").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetFollowStatus reports whether the caller follows a user
// GET /api/v1/users/:user_id/follow-status
func (h *Handlers) GetFollowStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("user_id")
	if targetID == userID {
		c.JSON(http.StatusOK, gin.H{"status": dto.FollowSelf})
		return
	}

	var count int64
	if err := h.db.WithContext(c.Request.Context()).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", userID, targetID).
		Count(&count).Error; err != nil {
		util.RespondInternalError(c, "Failed to check follow", err)
		return
	}

	status := dto.FollowNotFollowing
	if count > 0 {
		status = dto.FollowFollowing
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetFollowers lists who follows a user
// GET /api/v1/users/:user_id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	h.listFollows(c, "following_id", "followers")
}

// GetFollowing lists who a user follows
// GET /api/v1/users/:user_id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	h.listFollows(c, "follower_id", "following")
}

// listFollows loads rows where column = :user_id and attaches the other party's profile
func (h *Handlers) listFollows(c *gin.Context, column, key string) {
	ctx := c.Request.Context()
	var rows []models.Follow
	if err := h.db.WithContext(ctx).
		Where(column+" = ?", c.Param("user_id")).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		util.RespondInternalError(c, "Failed to load "+key, err)
		return
	}

	other := func(f models.Follow) string {
		if column == "following_id" {
			return f.FollowerID
		}
		return f.FollowingID
	}
	ids := make([]string, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, other(f))
	}
	profiles, err := h.social.ProfilesByUserID(ctx, ids)
	if err != nil {
		util.RespondInternalError(c, "Failed to load profiles", err)
		return
	}

	views := make([]dto.FollowView, 0, len(rows))
	for _, f := range rows {
		views = append(views, dto.FollowView{Follow: f, Profile: profiles[other(f)]})
	}
	c.JSON(http.StatusOK, gin.H{key: views, "count": len(views)})
}

// GetFollowCounts returns follower and following totals
// GET /api/v1/users/:user_id/follow-counts
func (h *Handlers) GetFollowCounts(c *gin.Context) {
	targetID := c.Param("user_id")
	db := h.db.WithContext(c.Request.Context())

	var counts dto.FollowCounts
	if err := db.Model(&models.Follow{}).Where("following_id = ?", targetID).Count(&counts.Followers).Error; err != nil {
		util.RespondInternalError(c, "Failed to count followers", err)
		return
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", targetID).Count(&counts.Following).Error; err != nil {
		util.RespondInternalError(c, "Failed to count following", err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
