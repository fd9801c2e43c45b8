package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/util"
	"gorm.io/gorm"
)

// AddStrainRequest is the body of POST /strains
type AddStrainRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Type        string   `json:"type" binding:"required,oneof=indica sativa hybrid"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	THC         *float64 `json:"thc" binding:"omitempty,min=0,max=100"`
	CBD         *float64 `json:"cbd" binding:"omitempty,min=0,max=100"`
	Effects     []string `json:"effects"`
	Flavors     []string `json:"flavors"`
}

// AddStrainReviewRequest is the body of POST /strains/:id/reviews
type AddStrainReviewRequest struct {
	Rating int     `json:"rating" binding:"required,min=1,max=5"`
	Review *string `json:"review" binding:"omitempty,max=2000"`
	Method *string `json:"method" binding:"omitempty,max=50"`
}

var errStrainExists = errors.New("strain exists")

// ListStrains returns every strain, newest first
// GET /api/v1/strains
func (h *Handlers) ListStrains(c *gin.Context) {
	var strains []models.Strain
	if err := h.db.WithContext(c.Request.Context()).Order("created_at DESC").Find(&strains).Error; err != nil {
		util.RespondInternalError(c, "Failed to load strains", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"strains": strains, "count": len(strains)})
}

// GetStrain returns a single strain
// GET /api/v1/strains/:id
func (h *Handlers) GetStrain(c *gin.Context) {
	strain, ok := h.loadStrain(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"strain": strain})
}

// AddStrain adds a strain to the shared catalog
// POST /api/v1/strains
func (h *Handlers) AddStrain(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req AddStrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		util.RespondValidationError(c, "name", "Name is required")
		return
	}

	strain := models.Strain{
		Name:        name,
		Type:        req.Type,
		Description: util.TrimOptional(req.Description),
		THC:         req.THC,
		CBD:         req.CBD,
		Effects:     cleanTags(req.Effects),
		Flavors:     cleanTags(req.Flavors),
		ReviewCount: 0,
		CreatedBy:   userID,
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Strain{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errStrainExists
		}
		return tx.Create(&strain).Error
	})
	if errors.Is(err, errStrainExists) {
		util.RespondConflict(c, "A strain with this name already exists")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to add strain", err)
		return
	}

	h.indexStrain(ctx, &strain)
	logger.Log.Info("Strain added", logger.WithUserID(userID), logger.WithStrainID(strain.ID))
	c.JSON(http.StatusCreated, gin.H{"strain": strain})
}

// SearchStrains matches strain names
// GET /api/v1/strains/search?q=
func (h *Handlers) SearchStrains(c *gin.Context) {
	strains, err := h.searchStrains(c.Request.Context(), c.Query("q"))
	if err != nil {
		util.RespondInternalError(c, "Failed to search strains", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"strains": strains, "count": len(strains)})
}

// GetStrainReviews lists reviews of a strain, newest first
// GET /api/v1/strains/:id/reviews
func (h *Handlers) GetStrainReviews(c *gin.Context) {
	strain, ok := h.loadStrain(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var reviews []models.StrainReview
	if err := h.db.WithContext(ctx).
		Where("strain_id = ?", strain.ID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		util.RespondInternalError(c, "Failed to load reviews", err)
		return
	}

	reviewerIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		reviewerIDs = append(reviewerIDs, r.UserID)
	}
	profiles, err := h.social.ProfilesByUserID(ctx, reviewerIDs)
	if err != nil {
		util.RespondInternalError(c, "Failed to load profiles", err)
		return
	}

	views := make([]dto.StrainReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, dto.StrainReviewView{StrainReview: r, Profile: profiles[r.UserID]})
	}
	c.JSON(http.StatusOK, gin.H{"reviews": views, "count": len(views)})
}

// AddStrainReview creates or replaces the caller's review and refreshes the strain's rating
// POST /api/v1/strains/:id/reviews
func (h *Handlers) AddStrainReview(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req AddStrainReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	strain, ok := h.loadStrain(c)
	if !ok {
		return
	}

	review, err := h.saveStrainReview(c.Request.Context(), strain, userID, &req)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent first review from the same user won, update it instead
		review, err = h.saveStrainReview(c.Request.Context(), strain, userID, &req)
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to save review", err)
		return
	}

	metrics.App().StrainReviews.Inc()
	c.JSON(http.StatusOK, gin.H{"review": review, "strain": strain})
}

// saveStrainReview creates the caller's review or replaces it. A replaced
// review counts as new, so it moves to the top of the newest-first list.
func (h *Handlers) saveStrainReview(ctx context.Context, strain *models.Strain, userID string, req *AddStrainReviewRequest) (models.StrainReview, error) {
	var review models.StrainReview
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("strain_id = ? AND user_id = ?", strain.ID, userID).First(&review).Error
		switch {
		case err == nil:
			review.Rating = req.Rating
			review.Review = util.TrimOptional(req.Review)
			review.Method = util.TrimOptional(req.Method)
			review.CreatedAt = h.now().UTC()
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		case util.IsNotFound(err):
			review = models.StrainReview{
				StrainID:  strain.ID,
				UserID:    userID,
				Rating:    req.Rating,
				Review:    util.TrimOptional(req.Review),
				Method:    util.TrimOptional(req.Method),
				CreatedAt: h.now().UTC(),
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return refreshStrainRating(tx, strain)
	})
	return review, err
}

// refreshStrainRating recomputes avg_rating (one decimal) and review_count
func refreshStrainRating(tx *gorm.DB, strain *models.Strain) error {
	var agg struct {
		Avg   float64
		Count int
	}
	if err := tx.Model(&models.StrainReview{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("strain_id = ?", strain.ID).
		Scan(&agg).Error; err != nil {
		return err
	}

	var avg *float64
	if agg.Count > 0 {
		rounded := roundRating(agg.Avg)
		avg = &rounded
	}
	if err := tx.Model(strain).Updates(map[string]interface{}{
		"avg_rating":   avg,
		"review_count": agg.Count,
	}).Error; err != nil {
		return err
	}
	strain.AvgRating = avg
	strain.ReviewCount = agg.Count
	return nil
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// ToggleFavorite adds or removes a strain from the caller's favorites
// POST /api/v1/strains/:id/favorite
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	strain, ok := h.loadStrain(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result := h.db.WithContext(ctx).
		Where("user_id = ? AND strain_id = ?", userID, strain.ID).
		Delete(&models.StrainFavorite{})
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to update favorites", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		c.JSON(http.StatusOK, gin.H{"action": "removed"})
		return
	}

	if err := h.db.WithContext(ctx).Create(&models.StrainFavorite{UserID: userID, StrainID: strain.ID}).Error; err != nil {
		util.RespondInternalError(c, "Failed to update favorites", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": "added"})
}

// GetUserFavorites lists the caller's favorite strains
// GET /api/v1/strains/favorites
func (h *Handlers) GetUserFavorites(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var strainIDs []string
	if err := h.db.WithContext(ctx).Model(&models.StrainFavorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("strain_id", &strainIDs).Error; err != nil {
		util.RespondInternalError(c, "Failed to load favorites", err)
		return
	}

	strains, err := h.strainsInOrder(ctx, strainIDs)
	if err != nil {
		util.RespondInternalError(c, "Failed to load strains", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"strains": strains, "count": len(strains)})
}

func (h *Handlers) loadStrain(c *gin.Context) (*models.Strain, bool) {
	var strain models.Strain
	if err := h.db.WithContext(c.Request.Context()).First(&strain, "id = ?", c.Param("id")).Error; err != nil {
		util.HandleDBError(c, err, "Strain")
		return nil, false
	}
	return &strain, true
}
