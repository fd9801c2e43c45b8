package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/repository"
	"github.com/puffbuddy/backend/internal/util"
	"gorm.io/gorm"
)

// SendFriendRequest creates a pending friendship
// POST /api/v1/friends/requests
func (h *Handlers) SendFriendRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	if req.ReceiverID == userID {
		util.RespondBadRequest(c, "Cannot send friend request to yourself")
		return
	}

	ctx := c.Request.Context()
	var receiver models.User
	if err := h.db.WithContext(ctx).Select("id").First(&receiver, "id = ?", req.ReceiverID).Error; err != nil {
		util.HandleDBError(c, err, "User")
		return
	}

	if _, err := h.social.FriendshipBetween(ctx, userID, req.ReceiverID); err == nil {
		util.RespondConflict(c, "Friendship already exists")
		return
	} else if !errors.Is(err, repository.ErrFriendshipNotFound) {
		util.RespondInternalError(c, "Failed to check friendship", err)
		return
	}

	friendship := models.Friendship{
		RequesterID: userID,
		ReceiverID:  req.ReceiverID,
		Status:      models.FriendshipPending,
	}
	notification := models.Notification{
		UserID:     req.ReceiverID,
		FromUserID: userID,
		Type:       models.NotificationFriendRequest,
		Message:    "sent you a friend request",
	}
	err := h.createFriendRequest(ctx, &friendship, &notification)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A request in either direction landed first
		util.RespondConflict(c, "Friendship already exists")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to send friend request", err)
		return
	}

	h.pushNotification(&notification)
	metrics.App().FriendRequests.WithLabelValues("sent").Inc()
	logger.Log.Info("Friend request sent", logger.WithUserID(userID))

	c.JSON(http.StatusCreated, gin.H{"friendship": friendship})
}

// createFriendRequest stores the request and its notification. The pair key
// makes a concurrent request from the other side fail with gorm.ErrDuplicatedKey.
func (h *Handlers) createFriendRequest(ctx context.Context, friendship *models.Friendship, notification *models.Notification) error {
	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(friendship).Error; err != nil {
			return err
		}
		return createNotification(tx, notification)
	})
}

// AcceptFriendRequest accepts a pending request addressed to the caller
// POST /api/v1/friends/requests/:id/accept
func (h *Handlers) AcceptFriendRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	friendship, ok := h.loadPendingRequest(c, userID)
	if !ok {
		return
	}

	notification := models.Notification{
		UserID:     friendship.RequesterID,
		FromUserID: userID,
		Type:       models.NotificationFriendAccept,
		Message:    "accepted your friend request",
	}
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(friendship).Update("status", models.FriendshipAccepted).Error; err != nil {
			return err
		}
		return createNotification(tx, &notification)
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to accept friend request", err)
		return
	}
	friendship.Status = models.FriendshipAccepted

	h.pushNotification(&notification)
	h.invalidateFeeds(c.Request.Context(), friendship.RequesterID, friendship.ReceiverID)
	metrics.App().FriendRequests.WithLabelValues("accepted").Inc()

	c.JSON(http.StatusOK, gin.H{"friendship": friendship})
}

// DeclineFriendRequest deletes a pending request addressed to the caller
// POST /api/v1/friends/requests/:id/decline
func (h *Handlers) DeclineFriendRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	friendship, ok := h.loadPendingRequest(c, userID)
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(friendship).Error; err != nil {
		util.RespondInternalError(c, "Failed to decline friend request", err)
		return
	}

	metrics.App().FriendRequests.WithLabelValues("declined").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// loadPendingRequest loads :id and checks the caller may answer it
func (h *Handlers) loadPendingRequest(c *gin.Context, userID string) (*models.Friendship, bool) {
	var friendship models.Friendship
	if err := h.db.WithContext(c.Request.Context()).First(&friendship, "id = ?", c.Param("id")).Error; err != nil {
		util.HandleDBError(c, err, "Friend request")
		return nil, false
	}
	if friendship.ReceiverID != userID {
		util.RespondForbidden(c)
		return nil, false
	}
	if friendship.Status != models.FriendshipPending {
		util.RespondBadRequest(c, "Friend request is not pending")
		return nil, false
	}
	return &friendship, true
}

// RemoveFriend deletes a friendship the caller is part of
// DELETE /api/v1/friends/:id
func (h *Handlers) RemoveFriend(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var friendship models.Friendship
	if err := h.db.WithContext(ctx).First(&friendship, "id = ?", c.Param("id")).Error; err != nil {
		util.HandleDBError(c, err, "Friendship")
		return
	}
	if !friendship.Involves(userID) {
		util.RespondForbidden(c)
		return
	}
	if err := h.db.WithContext(ctx).Delete(&friendship).Error; err != nil {
		util.RespondInternalError(c, "Failed to remove friend", err)
		return
	}

	h.invalidateFeeds(ctx, friendship.RequesterID, friendship.ReceiverID)
	metrics.App().FriendRequests.WithLabelValues("removed").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetPendingRequests lists requests waiting on the caller
// GET /api/v1/friends/requests
func (h *Handlers) GetPendingRequests(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var pending []models.Friendship
	if err := h.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC").
		Find(&pending).Error; err != nil {
		util.RespondInternalError(c, "Failed to load friend requests", err)
		return
	}

	requesterIDs := make([]string, 0, len(pending))
	for _, f := range pending {
		requesterIDs = append(requesterIDs, f.RequesterID)
	}
	profiles, err := h.social.ProfilesByUserID(ctx, requesterIDs)
	if err != nil {
		util.RespondInternalError(c, "Failed to load profiles", err)
		return
	}

	requests := make([]dto.FriendRequestView, 0, len(pending))
	for _, f := range pending {
		requests = append(requests, dto.FriendRequestView{
			Friendship:       f,
			RequesterProfile: profiles[f.RequesterID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// GetFriends lists the caller's accepted friendships
// GET /api/v1/friends
func (h *Handlers) GetFriends(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var accepted []models.Friendship
	if err := h.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR receiver_id = ?)", models.FriendshipAccepted, userID, userID).
		Order("updated_at DESC").
		Find(&accepted).Error; err != nil {
		util.RespondInternalError(c, "Failed to load friends", err)
		return
	}

	friendIDs := make([]string, 0, len(accepted))
	for _, f := range accepted {
		friendIDs = append(friendIDs, f.OtherParty(userID))
	}
	profiles, err := h.social.ProfilesByUserID(ctx, friendIDs)
	if err != nil {
		util.RespondInternalError(c, "Failed to load profiles", err)
		return
	}

	friends := make([]dto.FriendView, 0, len(accepted))
	for _, f := range accepted {
		friendID := f.OtherParty(userID)
		friends = append(friends, dto.FriendView{
			Friendship:    f,
			FriendID:      friendID,
			FriendProfile: profiles[friendID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends, "count": len(friends)})
}

// SearchUsers finds profiles by display name with the caller's friendship status
// GET /api/v1/friends/search?q=
func (h *Handlers) SearchUsers(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	profiles, err := h.social.SearchProfiles(ctx, c.Query("q"), userID, false, SearchLimit)
	if err != nil {
		util.RespondInternalError(c, "Failed to search users", err)
		return
	}

	results := make([]dto.UserSearchResult, 0, len(profiles))
	if len(profiles) > 0 {
		ids := make([]string, 0, len(profiles))
		for _, p := range profiles {
			ids = append(ids, p.UserID)
		}
		var rows []models.Friendship
		if err := h.db.WithContext(ctx).
			Where("(requester_id = ? AND receiver_id IN ?) OR (receiver_id = ? AND requester_id IN ?)", userID, ids, userID, ids).
			Find(&rows).Error; err != nil {
			util.RespondInternalError(c, "Failed to load friendships", err)
			return
		}
		byOther := make(map[string]*models.Friendship, len(rows))
		for i := range rows {
			byOther[rows[i].OtherParty(userID)] = &rows[i]
		}
		for _, p := range profiles {
			status := relationTo(userID, byOther[p.UserID])
			results = append(results, dto.UserSearchResult{
				Profile:          p,
				FriendshipStatus: status.Status,
				FriendshipID:     status.FriendshipID,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"users": results, "count": len(results)})
}

// GetFriendshipStatus describes the caller's relation to another user
// GET /api/v1/friends/status/:user_id
func (h *Handlers) GetFriendshipStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	otherID := c.Param("user_id")
	if otherID == userID {
		c.JSON(http.StatusOK, dto.FriendshipStatus{Status: dto.RelationSelf})
		return
	}

	friendship, err := h.social.FriendshipBetween(c.Request.Context(), userID, otherID)
	if err != nil && !errors.Is(err, repository.ErrFriendshipNotFound) {
		util.RespondInternalError(c, "Failed to load friendship", err)
		return
	}
	c.JSON(http.StatusOK, relationTo(userID, friendship))
}

// relationTo maps a friendship row (or nil) to the caller's view of it
func relationTo(userID string, f *models.Friendship) dto.FriendshipStatus {
	if f == nil {
		return dto.FriendshipStatus{Status: dto.RelationNone}
	}
	id := f.ID
	switch {
	case f.Status == models.FriendshipAccepted:
		return dto.FriendshipStatus{Status: dto.RelationFriends, FriendshipID: &id}
	case f.RequesterID == userID:
		return dto.FriendshipStatus{Status: dto.RelationSent, FriendshipID: &id}
	default:
		return dto.FriendshipStatus{Status: dto.RelationReceived, FriendshipID: &id}
	}
}
