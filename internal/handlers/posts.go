package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/cache"
	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/storage"
	"github.com/puffbuddy/backend/internal/telemetry"
	"github.com/puffbuddy/backend/internal/util"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CreatePostRequest is the body of POST /posts
type CreatePostRequest struct {
	Content string  `json:"content" binding:"required"`
	Type    string  `json:"type" binding:"omitempty,oneof=text photo"`
	ImageID *string `json:"image_id"`
	Faded   *bool   `json:"faded"`
}

// GetFeed returns the caller's feed: their own posts plus those of friends and followees
// GET /api/v1/feed
func (h *Handlers) GetFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	posts, err := cache.Remember(ctx, h.cache, "feed", cache.FeedKey(userID), cache.FeedTTL, func() ([]dto.PostView, error) {
		return h.buildFeed(ctx, userID)
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to load feed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// buildFeed scans the most recent posts and keeps those by the author set
func (h *Handlers) buildFeed(ctx context.Context, userID string) ([]dto.PostView, error) {
	started := time.Now()
	defer func() { metrics.App().FeedBuildDuration.Observe(time.Since(started).Seconds()) }()

	authors, err := h.social.FeedAuthorIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartFeedSpan(ctx, userID, len(authors))
	defer span.End()

	allowed := make(map[string]bool, len(authors))
	for _, id := range authors {
		allowed[id] = true
	}

	var recent []models.Post
	if err := h.db.WithContext(ctx).Order("created_at DESC").Limit(FeedScanSize).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("load recent posts: %w", err)
	}
	posts := make([]models.Post, 0, len(recent))
	for _, p := range recent {
		if allowed[p.UserID] {
			posts = append(posts, p)
		}
	}
	telemetry.RecordEvent(ctx, "feed.filtered", attribute.Int("feed.post_count", len(posts)))

	return h.decoratePosts(ctx, userID, posts, true)
}

// decoratePosts attaches profiles, viewer flags, image URLs and optionally comments
func (h *Handlers) decoratePosts(ctx context.Context, viewerID string, posts []models.Post, withComments bool) ([]dto.PostView, error) {
	views := make([]dto.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	db := h.db.WithContext(ctx)
	postIDs := make([]string, 0, len(posts))
	userIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		userIDs = append(userIDs, p.UserID)
	}

	var liked, retweeted []string
	if err := db.Model(&models.PostLike{}).Where("user_id = ? AND post_id IN ?", viewerID, postIDs).Pluck("post_id", &liked).Error; err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	if err := db.Model(&models.Retweet{}).Where("user_id = ? AND post_id IN ?", viewerID, postIDs).Pluck("post_id", &retweeted).Error; err != nil {
		return nil, fmt.Errorf("load retweets: %w", err)
	}

	var comments []models.Comment
	likedComments := map[string]bool{}
	if withComments {
		if err := db.Where("post_id IN ?", postIDs).Order("created_at ASC").Find(&comments).Error; err != nil {
			return nil, fmt.Errorf("load comments: %w", err)
		}
		commentIDs := make([]string, 0, len(comments))
		for _, cm := range comments {
			commentIDs = append(commentIDs, cm.ID)
			userIDs = append(userIDs, cm.UserID)
		}
		if len(commentIDs) > 0 {
			var ids []string
			if err := db.Model(&models.CommentLike{}).Where("user_id = ? AND comment_id IN ?", viewerID, commentIDs).Pluck("comment_id", &ids).Error; err != nil {
				return nil, fmt.Errorf("load comment likes: %w", err)
			}
			for _, id := range ids {
				likedComments[id] = true
			}
		}
	}

	profiles, err := h.social.ProfilesByUserID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	likedSet := toSet(liked)
	retweetedSet := toSet(retweeted)
	commentsByPost := make(map[string][]dto.CommentView, len(posts))
	for _, cm := range comments {
		commentsByPost[cm.PostID] = append(commentsByPost[cm.PostID], dto.CommentView{
			Comment: cm,
			Profile: profiles[cm.UserID],
			IsLiked: likedComments[cm.ID],
		})
	}

	for _, p := range posts {
		view := dto.PostView{
			Post:        p,
			Profile:     profiles[p.UserID],
			ImageURL:    h.imageURL(p.ImageID),
			IsLiked:     likedSet[p.ID],
			IsRetweeted: retweetedSet[p.ID],
		}
		if withComments {
			view.Comments = commentsByPost[p.ID]
			if view.Comments == nil {
				view.Comments = []dto.CommentView{}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// CreatePost publishes a post
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || util.RuneLen(content) > MaxContentLength {
		util.RespondValidationError(c, "content", fmt.Sprintf("Content must be between 1 and %d characters", MaxContentLength))
		return
	}

	imageID := util.TrimOptional(req.ImageID)
	if imageID != nil && storage.KeyOwner(*imageID) != userID {
		util.RespondValidationError(c, "image_id", "Storage id does not belong to you")
		return
	}

	postType := req.Type
	if postType == "" {
		postType = models.PostTypeText
		if imageID != nil {
			postType = models.PostTypePhoto
		}
	}

	post := models.Post{
		UserID:  userID,
		Content: content,
		Type:    postType,
		ImageID: imageID,
		Faded:   req.Faded,
	}
	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&post).Error; err != nil {
		util.RespondInternalError(c, "Failed to create post", err)
		return
	}

	h.invalidateFeeds(ctx, userID)
	metrics.App().PostsCreated.WithLabelValues(post.Type).Inc()
	logger.Log.Info("Post created", logger.WithUserID(userID), logger.WithPostID(post.ID))

	c.JSON(http.StatusCreated, gin.H{"post": dto.PostView{Post: post, ImageURL: h.imageURL(post.ImageID)}})
}

// DeletePost removes a post with its comments, likes, retweets and image
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	post, ok := h.loadPost(c, c.Param("id"))
	if !ok {
		return
	}
	if post.UserID != userID {
		util.RespondForbidden(c)
		return
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", post.ID)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Comment{}, &models.PostLike{}, &models.Retweet{}, &models.Notification{}} {
			if err := tx.Where("post_id = ?", post.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to delete post", err)
		return
	}

	h.deleteImage(ctx, post.ImageID)
	h.invalidateFeeds(ctx, userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LikePost toggles the caller's like on a post
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	post, ok := h.loadPost(c, c.Param("id"))
	if !ok {
		return
	}

	var notification *models.Notification
	liked := false
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", post.ID, userID).Delete(&models.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return decrementCounter(tx, &models.Post{}, post.ID, "like_count")
		}

		liked = true
		if err := tx.Create(&models.PostLike{PostID: post.ID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := incrementCounter(tx, &models.Post{}, post.ID, "like_count"); err != nil {
			return err
		}
		if post.UserID != userID {
			notification = &models.Notification{
				UserID:     post.UserID,
				FromUserID: userID,
				Type:       models.NotificationLike,
				PostID:     &post.ID,
				Message:    "liked your post",
			}
			return createNotification(tx, notification)
		}
		return nil
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to like post", err)
		return
	}

	likes, err := h.postCounter(c.Request.Context(), post.ID, "like_count")
	if err != nil {
		util.RespondInternalError(c, "Failed to load like count", err)
		return
	}

	h.pushNotification(notification)
	h.invalidateFeeds(c.Request.Context(), userID, post.UserID)
	metrics.App().LikesToggled.WithLabelValues("post", toggleAction(liked)).Inc()

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": likes})
}

// RetweetPost toggles the caller's retweet of a post
// POST /api/v1/posts/:id/retweet
func (h *Handlers) RetweetPost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Comment *string `json:"comment" binding:"omitempty,max=2000"`
	}
	// The body is optional and may arrive chunked
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			util.RespondBindError(c, err)
			return
		}
	}
	comment := util.TrimOptional(req.Comment)

	post, ok := h.loadPost(c, c.Param("id"))
	if !ok {
		return
	}

	var notification *models.Notification
	retweeted := false
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", post.ID, userID).Delete(&models.Retweet{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return decrementCounter(tx, &models.Post{}, post.ID, "retweet_count")
		}

		retweeted = true
		if err := tx.Create(&models.Retweet{PostID: post.ID, UserID: userID, Comment: comment}).Error; err != nil {
			return err
		}
		if err := incrementCounter(tx, &models.Post{}, post.ID, "retweet_count"); err != nil {
			return err
		}
		if post.UserID != userID {
			message := "retweeted your post"
			if comment != nil {
				message = `retweeted your post: "` + *comment + `"`
			}
			notification = &models.Notification{
				UserID:     post.UserID,
				FromUserID: userID,
				Type:       models.NotificationRetweet,
				PostID:     &post.ID,
				Message:    message,
			}
			return createNotification(tx, notification)
		}
		return nil
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to retweet post", err)
		return
	}

	retweets, err := h.postCounter(c.Request.Context(), post.ID, "retweet_count")
	if err != nil {
		util.RespondInternalError(c, "Failed to load retweet count", err)
		return
	}

	h.pushNotification(notification)
	h.invalidateFeeds(c.Request.Context(), userID, post.UserID)

	c.JSON(http.StatusOK, gin.H{"retweeted": retweeted, "retweets": retweets})
}

// AddComment comments on a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || util.RuneLen(content) > MaxContentLength {
		util.RespondValidationError(c, "content", fmt.Sprintf("Content must be between 1 and %d characters", MaxContentLength))
		return
	}

	post, ok := h.loadPost(c, c.Param("id"))
	if !ok {
		return
	}

	comment := models.Comment{PostID: post.ID, UserID: userID, Content: content}
	var notification *models.Notification
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if err := incrementCounter(tx, &models.Post{}, post.ID, "comment_count"); err != nil {
			return err
		}
		if post.UserID != userID {
			notification = &models.Notification{
				UserID:     post.UserID,
				FromUserID: userID,
				Type:       models.NotificationComment,
				PostID:     &post.ID,
				CommentID:  &comment.ID,
				Message:    `commented on your post: "` + content + `"`,
			}
			return createNotification(tx, notification)
		}
		return nil
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to add comment", err)
		return
	}

	h.pushNotification(notification)
	h.invalidateFeeds(c.Request.Context(), userID, post.UserID)
	metrics.App().CommentsCreated.Inc()

	profile, _ := h.social.GetProfile(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, gin.H{"comment": dto.CommentView{Comment: comment, Profile: profile}})
}

// LikeComment toggles the caller's like on a comment
// POST /api/v1/comments/:id/like
func (h *Handlers) LikeComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var comment models.Comment
	if err := h.db.WithContext(ctx).First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		util.HandleDBError(c, err, "Comment")
		return
	}

	liked := false
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("comment_id = ? AND user_id = ?", comment.ID, userID).Delete(&models.CommentLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return decrementCounter(tx, &models.Comment{}, comment.ID, "like_count")
		}
		liked = true
		if err := tx.Create(&models.CommentLike{CommentID: comment.ID, UserID: userID}).Error; err != nil {
			return err
		}
		return incrementCounter(tx, &models.Comment{}, comment.ID, "like_count")
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to like comment", err)
		return
	}

	var likes int
	if err := h.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", comment.ID).
		Select("like_count").Scan(&likes).Error; err != nil {
		util.RespondInternalError(c, "Failed to load like count", err)
		return
	}

	var postOwner string
	h.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", comment.PostID).Select("user_id").Scan(&postOwner)
	h.invalidateFeeds(ctx, userID, postOwner)
	metrics.App().LikesToggled.WithLabelValues("comment", toggleAction(liked)).Inc()

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": likes})
}

// GetUserPosts returns a user's latest posts
// GET /api/v1/users/:user_id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var posts []models.Post
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", c.Param("user_id")).
		Order("created_at DESC").
		Limit(UserPostsLimit).
		Find(&posts).Error; err != nil {
		util.RespondInternalError(c, "Failed to load posts", err)
		return
	}

	views, err := h.decoratePosts(ctx, viewerID, posts, false)
	if err != nil {
		util.RespondInternalError(c, "Failed to load posts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": views, "count": len(views)})
}

func (h *Handlers) loadPost(c *gin.Context, postID string) (*models.Post, bool) {
	var post models.Post
	if err := h.db.WithContext(c.Request.Context()).First(&post, "id = ?", postID).Error; err != nil {
		util.HandleDBError(c, err, "Post")
		return nil, false
	}
	return &post, true
}

func (h *Handlers) postCounter(ctx context.Context, postID, column string) (int, error) {
	var value int
	err := h.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Select(column).Scan(&value).Error
	return value, err
}

func incrementCounter(tx *gorm.DB, model interface{}, id, column string) error {
	return tx.Model(model).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// decrementCounter never takes a counter below zero
func decrementCounter(tx *gorm.DB, model interface{}, id, column string) error {
	return tx.Model(model).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr("CASE WHEN "+column+" > 0 THEN "+column+" - 1 ELSE 0 END")).Error
}

func toggleAction(on bool) string {
	if on {
		return "added"
	}
	return "removed"
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
