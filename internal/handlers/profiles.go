package handlers

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/repository"
	"github.com/puffbuddy/backend/internal/storage"
	"github.com/puffbuddy/backend/internal/util"
	"github.com/puffbuddy/backend/internal/websocket"
	"go.uber.org/zap"
)

// CreateProfileRequest is the body of POST /profiles
type CreateProfileRequest struct {
	DisplayName string   `json:"display_name" binding:"required,max=80"`
	Bio         *string  `json:"bio" binding:"omitempty,max=500"`
	SmokingGoal *string  `json:"smoking_goal" binding:"omitempty,max=200"`
	Location    *string  `json:"location" binding:"omitempty,max=100"`
	Website     *string  `json:"website" binding:"omitempty,max=200"`
	Tags        []string `json:"tags" binding:"omitempty,max=10"`
}

// UpdateProfileRequest is a partial update; absent fields are left unchanged
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name" binding:"omitempty,max=80"`
	Bio         *string  `json:"bio" binding:"omitempty,max=500"`
	SmokingGoal *string  `json:"smoking_goal" binding:"omitempty,max=200"`
	Location    *string  `json:"location" binding:"omitempty,max=100"`
	Website     *string  `json:"website" binding:"omitempty,max=200"`
	Tags        []string `json:"tags" binding:"omitempty,max=10"`
}

// GetCurrentProfile returns the caller's profile or null
// GET /api/v1/profiles/me
func (h *Handlers) GetCurrentProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	h.respondProfileOrNull(c, userID)
}

// GetProfile returns a user's profile or null
// GET /api/v1/profiles/:user_id
func (h *Handlers) GetProfile(c *gin.Context) {
	h.respondProfileOrNull(c, c.Param("user_id"))
}

func (h *Handlers) respondProfileOrNull(c *gin.Context, userID string) {
	profile, err := h.social.GetProfile(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": h.profileView(profile)})
}

func (h *Handlers) profileView(p *models.Profile) dto.ProfileView {
	return dto.ProfileView{
		Profile:       *p,
		PhotoURL:      h.imageURL(p.PhotoID),
		BackgroundURL: h.imageURL(p.BackgroundID),
	}
}

// CreateProfile creates the caller's profile
// POST /api/v1/profiles
func (h *Handlers) CreateProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		util.RespondValidationError(c, "display_name", "Display name is required")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.social.GetProfile(ctx, userID); err == nil {
		util.RespondConflict(c, "Profile already exists")
		return
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		util.RespondInternalError(c, "Failed to load profile", err)
		return
	}

	tags := cleanTags(req.Tags)
	if len(tags) == 0 {
		tags = randomTags(randomTagCount)
	}

	profile := models.Profile{
		UserID:      userID,
		DisplayName: displayName,
		Bio:         util.TrimOptional(req.Bio),
		SmokingGoal: util.TrimOptional(req.SmokingGoal),
		Location:    util.TrimOptional(req.Location),
		Website:     util.TrimOptional(req.Website),
		Tags:        tags,
		JoinedAt:    h.now().UTC(),
	}
	if err := h.db.WithContext(ctx).Create(&profile).Error; err != nil {
		util.RespondInternalError(c, "Failed to create profile", err)
		return
	}

	h.indexProfile(ctx, &profile)
	logger.Log.Info("Profile created", logger.WithUserID(userID))
	c.JSON(http.StatusCreated, gin.H{"profile": h.profileView(&profile)})
}

// UpdateProfile applies a partial update to the caller's profile
// PATCH /api/v1/profiles/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.social.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		util.RespondNotFound(c, "Profile")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to load profile", err)
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			util.RespondValidationError(c, "display_name", "Display name cannot be empty")
			return
		}
		updates["display_name"] = name
	}
	if req.Bio != nil {
		updates["bio"] = util.TrimOptional(req.Bio)
	}
	if req.SmokingGoal != nil {
		updates["smoking_goal"] = util.TrimOptional(req.SmokingGoal)
	}
	if req.Location != nil {
		updates["location"] = util.TrimOptional(req.Location)
	}
	if req.Website != nil {
		updates["website"] = util.TrimOptional(req.Website)
	}
	if req.Tags != nil {
		updates["tags"] = cleanTags(req.Tags)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			util.RespondInternalError(c, "Failed to update profile", err)
			return
		}
		if profile, err = h.social.GetProfile(ctx, userID); err != nil {
			util.RespondInternalError(c, "Failed to reload profile", err)
			return
		}
		h.indexProfile(ctx, profile)
	}

	c.JSON(http.StatusOK, gin.H{"profile": h.profileView(profile)})
}

// GetSuggestedTags returns the tag suggestions shown during onboarding
// GET /api/v1/profiles/tags
func (h *Handlers) GetSuggestedTags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": models.SuggestedTags})
}

// SearchProfiles matches display name or bio, excluding the caller
// GET /api/v1/profiles/search?q=
func (h *Handlers) SearchProfiles(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	profiles, err := h.searchProfiles(c.Request.Context(), c.Query("q"), userID)
	if err != nil {
		util.RespondInternalError(c, "Failed to search profiles", err)
		return
	}

	views := make([]dto.ProfileView, 0, len(profiles))
	for i := range profiles {
		views = append(views, h.profileView(&profiles[i]))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": views, "count": len(views)})
}

// UpdateSmokingStatus flips the caller's "smoking now" flag and tells their friends
// PUT /api/v1/profiles/me/smoking-status
func (h *Handlers) UpdateSmokingStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		IsSmokingNow *bool `json:"is_smoking_now" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.social.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		util.RespondNotFound(c, "Profile")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to load profile", err)
		return
	}

	now := h.now().UTC()
	if err := h.db.WithContext(ctx).Model(profile).Updates(map[string]interface{}{
		"is_smoking_now":             *req.IsSmokingNow,
		"last_smoking_status_update": now,
	}).Error; err != nil {
		util.RespondInternalError(c, "Failed to update smoking status", err)
		return
	}
	profile.IsSmokingNow = *req.IsSmokingNow
	profile.LastSmokingStatusUpdate = &now

	h.pushToFriends(ctx, userID, websocket.NewMessage(websocket.MessageTypeSmokingStatus, websocket.SmokingStatusPayload{
		UserID:       userID,
		DisplayName:  profile.DisplayName,
		IsSmokingNow: profile.IsSmokingNow,
		UpdatedAt:    now,
	}))

	c.JSON(http.StatusOK, gin.H{"profile": h.profileView(profile)})
}

// UpdateProfilePhoto points the profile at a new uploaded photo
// PUT /api/v1/profiles/me/photo
func (h *Handlers) UpdateProfilePhoto(c *gin.Context) {
	h.updateProfileImage(c, "photo_id")
}

// UpdateBackgroundPhoto points the profile at a new uploaded background
// PUT /api/v1/profiles/me/background
func (h *Handlers) UpdateBackgroundPhoto(c *gin.Context) {
	h.updateProfileImage(c, "background_id")
}

func (h *Handlers) updateProfileImage(c *gin.Context, field string) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	key := strings.TrimSpace(req[field])
	if key == "" {
		util.RespondValidationError(c, field, "Storage id is required")
		return
	}
	if storage.KeyOwner(key) != userID {
		util.RespondValidationError(c, field, "Storage id does not belong to you")
		return
	}

	ctx := c.Request.Context()
	profile, err := h.social.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		util.RespondNotFound(c, "Profile")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to load profile", err)
		return
	}

	// Copy the key out: Update writes the new value through the model's fields
	current := profile.PhotoID
	if field == "background_id" {
		current = profile.BackgroundID
	}
	var previous string
	if current != nil {
		previous = *current
	}

	if err := h.db.WithContext(ctx).Model(profile).Update(field, key).Error; err != nil {
		util.RespondInternalError(c, "Failed to update profile image", err)
		return
	}
	if previous != "" && previous != key {
		h.deleteImage(ctx, &previous)
	}

	if field == "background_id" {
		profile.BackgroundID = &key
	} else {
		profile.PhotoID = &key
	}
	logger.Log.Debug("Profile image updated", logger.WithUserID(userID), zap.String("field", field))
	c.JSON(http.StatusOK, gin.H{"profile": h.profileView(profile)})
}

// GetProfilePhotoURL resolves a user's photo to a URL or null
// GET /api/v1/profiles/:user_id/photo-url
func (h *Handlers) GetProfilePhotoURL(c *gin.Context) {
	h.respondProfileImageURL(c, false)
}

// GetBackgroundPhotoURL resolves a user's background to a URL or null
// GET /api/v1/profiles/:user_id/background-url
func (h *Handlers) GetBackgroundPhotoURL(c *gin.Context) {
	h.respondProfileImageURL(c, true)
}

func (h *Handlers) respondProfileImageURL(c *gin.Context, background bool) {
	profile, err := h.social.GetProfile(c.Request.Context(), c.Param("user_id"))
	if errors.Is(err, repository.ErrProfileNotFound) {
		c.JSON(http.StatusOK, gin.H{"url": nil})
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to load profile", err)
		return
	}
	key := profile.PhotoID
	if background {
		key = profile.BackgroundID
	}
	c.JSON(http.StatusOK, gin.H{"url": h.imageURL(key)})
}

// randomTags picks n distinct suggested tags
func randomTags(n int) models.StringList {
	if n > len(models.SuggestedTags) {
		n = len(models.SuggestedTags)
	}
	tags := make(models.StringList, 0, n)
	for _, i := range rand.Perm(len(models.SuggestedTags))[:n] {
		tags = append(tags, models.SuggestedTags[i])
	}
	return tags
}

// cleanTags trims tags and drops blanks and duplicates
func cleanTags(tags []string) models.StringList {
	seen := make(map[string]bool, len(tags))
	out := make(models.StringList, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
