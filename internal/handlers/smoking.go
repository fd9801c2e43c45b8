package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/cache"
	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/stats"
	"github.com/puffbuddy/backend/internal/storage"
	"github.com/puffbuddy/backend/internal/telemetry"
	"github.com/puffbuddy/backend/internal/util"
	"github.com/puffbuddy/backend/internal/websocket"
)

// LogPuffRequest is the body of POST /puffs
type LogPuffRequest struct {
	Cigarettes int     `json:"cigarettes" binding:"required,min=1,max=1000"`
	Location   *string `json:"location" binding:"omitempty,max=100"`
	Mood       *string `json:"mood" binding:"omitempty,max=50"`
	Notes      *string `json:"notes" binding:"omitempty,max=2000"`
	Method     *string `json:"method" binding:"omitempty,max=50"`
	Strain     *string `json:"strain" binding:"omitempty,max=100"`
	ImageID    *string `json:"image_id"`
}

// LogPuff records a session for the caller
// POST /api/v1/puffs
func (h *Handlers) LogPuff(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req LogPuffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	imageID := util.TrimOptional(req.ImageID)
	if imageID != nil && storage.KeyOwner(*imageID) != userID {
		util.RespondValidationError(c, "image_id", "Storage id does not belong to you")
		return
	}

	puff := models.SmokingPuff{
		UserID:     userID,
		Cigarettes: req.Cigarettes,
		Location:   util.TrimOptional(req.Location),
		Mood:       util.TrimOptional(req.Mood),
		Notes:      util.TrimOptional(req.Notes),
		Method:     util.TrimOptional(req.Method),
		Strain:     util.TrimOptional(req.Strain),
		ImageID:    imageID,
		Timestamp:  h.now().UTC(),
	}
	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&puff).Error; err != nil {
		util.RespondInternalError(c, "Failed to log puff", err)
		return
	}

	method := "unspecified"
	if puff.Method != nil {
		method = *puff.Method
	}
	metrics.App().PuffsLogged.WithLabelValues(method).Inc()
	metrics.App().CigarettesLogged.Add(float64(puff.Cigarettes))
	cache.Invalidate(ctx, h.cache, cache.LeaderboardKey)

	h.pushToFriends(ctx, userID, websocket.NewMessage(websocket.MessageTypePuffLogged, websocket.PuffLoggedPayload{
		UserID:      userID,
		DisplayName: h.displayName(ctx, userID),
		PuffID:      puff.ID,
		Cigarettes:  puff.Cigarettes,
		Method:      method,
		Timestamp:   puff.Timestamp,
	}))
	logger.Log.Info("Puff logged", logger.WithUserID(userID), logger.WithPuffID(puff.ID))

	c.JSON(http.StatusCreated, gin.H{"puff": dto.PuffView{SmokingPuff: puff, ImageURL: h.imageURL(puff.ImageID)}})
}

// GetPuffs returns the caller's latest sessions
// GET /api/v1/puffs
func (h *Handlers) GetPuffs(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var puffs []models.SmokingPuff
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(util.ParseLimit(c, PuffListLimit, PuffListLimit)).
		Find(&puffs).Error; err != nil {
		util.RespondInternalError(c, "Failed to load puffs", err)
		return
	}

	views := make([]dto.PuffView, 0, len(puffs))
	for _, p := range puffs {
		views = append(views, dto.PuffView{SmokingPuff: p, ImageURL: h.imageURL(p.ImageID)})
	}
	c.JSON(http.StatusOK, gin.H{"puffs": views, "count": len(views)})
}

// GetStats summarizes the caller's consumption windows and streaks
// GET /api/v1/puffs/stats
func (h *Handlers) GetStats(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var sessions []stats.Session
	if err := h.db.WithContext(c.Request.Context()).Model(&models.SmokingPuff{}).
		Select("cigarettes, timestamp").
		Where("user_id = ?", userID).
		Find(&sessions).Error; err != nil {
		util.RespondInternalError(c, "Failed to load puffs", err)
		return
	}

	_, span := telemetry.StartStatsSpan(c.Request.Context(), userID, len(sessions))
	summary := stats.Summarize(sessions, h.now(), h.statsLocation)
	span.End()

	c.JSON(http.StatusOK, summary)
}

// GetLeaderboard ranks users by consumption over the last 7 days
// GET /api/v1/puffs/leaderboard
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	ctx := c.Request.Context()
	entries, err := cache.Remember(ctx, h.cache, "leaderboard", cache.LeaderboardKey, cache.LeaderboardTTL, func() ([]stats.LeaderboardEntry, error) {
		return h.buildLeaderboard(ctx)
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to load leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "count": len(entries)})
}

func (h *Handlers) buildLeaderboard(ctx context.Context) ([]stats.LeaderboardEntry, error) {
	since := h.now().UTC().Add(-stats.Week)

	var sessions []stats.UserSession
	if err := h.db.WithContext(ctx).Model(&models.SmokingPuff{}).
		Select("user_id, cigarettes").
		Where("timestamp >= ?", since).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("load weekly puffs: %w", err)
	}

	userIDs := make([]string, 0, len(sessions))
	for _, s := range sessions {
		userIDs = append(userIDs, s.UserID)
	}
	profiles, err := h.social.ProfilesByUserID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(profiles))
	for id, p := range profiles {
		names[id] = p.DisplayName
	}

	return stats.Leaderboard(sessions, names, stats.LeaderboardSize), nil
}

// DeletePuff removes one of the caller's sessions and its photo
// DELETE /api/v1/puffs/:id
func (h *Handlers) DeletePuff(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var puff models.SmokingPuff
	if err := h.db.WithContext(ctx).First(&puff, "id = ?", c.Param("id")).Error; err != nil {
		util.HandleDBError(c, err, "Puff")
		return
	}
	if puff.UserID != userID {
		util.RespondForbidden(c)
		return
	}
	if err := h.db.WithContext(ctx).Delete(&puff).Error; err != nil {
		util.RespondInternalError(c, "Failed to delete puff", err)
		return
	}

	h.deleteImage(ctx, puff.ImageID)
	cache.Invalidate(ctx, h.cache, cache.LeaderboardKey)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
