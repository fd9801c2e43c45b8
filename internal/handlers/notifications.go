package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/util"
)

// GetNotifications returns the caller's latest notifications
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var notifications []models.Notification
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(util.ParseLimit(c, NotificationsLimit, NotificationsLimit)).
		Find(&notifications).Error; err != nil {
		util.RespondInternalError(c, "Failed to load notifications", err)
		return
	}

	actorIDs := make([]string, 0, len(notifications))
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.FromUserID)
	}
	profiles, err := h.social.ProfilesByUserID(ctx, actorIDs)
	if err != nil {
		util.RespondInternalError(c, "Failed to load profiles", err)
		return
	}

	views := make([]dto.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, dto.NotificationView{Notification: n, FromUserProfile: profiles[n.FromUserID]})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": views, "count": len(views)})
}

// MarkNotificationRead marks one of the caller's notifications read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var notification models.Notification
	if err := h.db.WithContext(ctx).First(&notification, "id = ?", c.Param("id")).Error; err != nil {
		util.HandleDBError(c, err, "Notification")
		return
	}
	if notification.UserID != userID {
		util.RespondForbidden(c)
		return
	}

	if !notification.Read {
		if err := h.db.WithContext(ctx).Model(&notification).Update("read", true).Error; err != nil {
			util.RespondInternalError(c, "Failed to mark notification read", err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks every notification of the caller read
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to mark notifications read", result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "marked": result.RowsAffected})
}

// GetUnreadCount counts the caller's unread notifications
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var count int64
	if err := h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		util.RespondInternalError(c, "Failed to count notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
