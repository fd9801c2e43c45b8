package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/websocket"
)

// RouteOptions carries the middleware and optional handlers mounted next to the API
type RouteOptions struct {
	RequireAuth gin.HandlerFunc
	// Extra limiters for sign-in and upload endpoints, may be empty
	AuthLimit   []gin.HandlerFunc
	UploadLimit []gin.HandlerFunc
	WebSocket   *websocket.Handler
}

// RegisterRoutes mounts the whole /api/v1 surface on api
func RegisterRoutes(api *gin.RouterGroup, h *Handlers, authH *AuthHandlers, opts RouteOptions) {
	requireAuth := opts.RequireAuth

	// Authentication routes
	authGroup := api.Group("/auth")
	{
		public := authGroup.Group("", opts.AuthLimit...)
		public.POST("/register", authH.Register)
		public.POST("/login", authH.Login)
		public.POST("/anonymous", authH.LoginAnonymous)
		public.POST("/password-reset/request", authH.RequestPasswordReset)
		public.POST("/password-reset/confirm", authH.ResetPassword)
		public.POST("/2fa/verify-login", authH.Verify2FALogin)

		if authH.authService.GoogleEnabled() {
			public.GET("/google", authH.GoogleOAuth)
			public.GET("/google/callback", authH.GoogleCallback)
		}

		authGroup.GET("/me", requireAuth, authH.Me)

		twoFactor := authGroup.Group("/2fa", requireAuth)
		twoFactor.GET("/status", authH.Get2FAStatus)
		twoFactor.POST("/enable", authH.Enable2FA)
		twoFactor.POST("/verify", authH.Verify2FA)
		twoFactor.POST("/disable", authH.Disable2FA)
		twoFactor.POST("/backup-codes", authH.RegenerateBackupCodes)
	}

	authed := api.Group("", requireAuth)

	// Profile routes
	profiles := authed.Group("/profiles")
	{
		profiles.POST("", h.CreateProfile)
		profiles.GET("/me", h.GetCurrentProfile)
		profiles.PATCH("/me", h.UpdateProfile)
		profiles.PUT("/me/smoking-status", h.UpdateSmokingStatus)
		profiles.PUT("/me/photo", h.UpdateProfilePhoto)
		profiles.PUT("/me/background", h.UpdateBackgroundPhoto)
		profiles.POST("/upload-url", withMiddleware(opts.UploadLimit, h.GenerateUploadURL)...)
		profiles.GET("/tags", h.GetSuggestedTags)
		profiles.GET("/search", h.SearchProfiles)
		profiles.GET("/:user_id", h.GetProfile)
		profiles.GET("/:user_id/photo-url", h.GetProfilePhotoURL)
		profiles.GET("/:user_id/background-url", h.GetBackgroundPhotoURL)
	}

	// Upload routes
	uploads := authed.Group("/uploads", opts.UploadLimit...)
	{
		uploads.POST("/url", h.GenerateUploadURL)
		uploads.POST("/image", h.UploadImage)
	}

	// Friend routes
	friends := authed.Group("/friends")
	{
		friends.GET("", h.GetFriends)
		friends.GET("/requests", h.GetPendingRequests)
		friends.POST("/requests", h.SendFriendRequest)
		friends.POST("/requests/:id/accept", h.AcceptFriendRequest)
		friends.POST("/requests/:id/decline", h.DeclineFriendRequest)
		friends.GET("/search", h.SearchUsers)
		friends.GET("/status/:user_id", h.GetFriendshipStatus)
		friends.DELETE("/:id", h.RemoveFriend)
	}

	// User routes: follows and timelines
	users := authed.Group("/users/:user_id")
	{
		users.POST("/follow", h.FollowUser)
		users.DELETE("/follow", h.UnfollowUser)
		users.GET("/follow-status", h.GetFollowStatus)
		users.GET("/followers", h.GetFollowers)
		users.GET("/following", h.GetFollowing)
		users.GET("/follow-counts", h.GetFollowCounts)
		users.GET("/posts", h.GetUserPosts)
	}

	// Post routes
	authed.GET("/feed", h.GetFeed)
	posts := authed.Group("/posts")
	{
		posts.POST("", h.CreatePost)
		posts.DELETE("/:id", h.DeletePost)
		posts.POST("/:id/like", h.LikePost)
		posts.POST("/:id/retweet", h.RetweetPost)
		posts.POST("/:id/comments", h.AddComment)
	}
	authed.POST("/comments/:id/like", h.LikeComment)

	// Conversation routes
	conversations := authed.Group("/conversations")
	{
		conversations.GET("", h.GetConversations)
		conversations.POST("", h.GetOrCreateConversation)
		conversations.GET("/:id/messages", h.GetMessages)
		conversations.POST("/:id/messages", h.SendMessage)
		conversations.POST("/:id/read", h.MarkConversationRead)
	}

	// Notification routes
	notifications := authed.Group("/notifications")
	{
		notifications.GET("", h.GetNotifications)
		notifications.GET("/unread-count", h.GetUnreadCount)
		notifications.POST("/read-all", h.MarkAllNotificationsRead)
		notifications.POST("/:id/read", h.MarkNotificationRead)
	}

	// Strain routes
	strains := authed.Group("/strains")
	{
		strains.GET("", h.ListStrains)
		strains.POST("", h.AddStrain)
		strains.GET("/search", h.SearchStrains)
		strains.GET("/favorites", h.GetUserFavorites)
		strains.GET("/:id", h.GetStrain)
		strains.GET("/:id/reviews", h.GetStrainReviews)
		strains.POST("/:id/reviews", h.AddStrainReview)
		strains.POST("/:id/favorite", h.ToggleFavorite)
	}

	// Smoking routes
	puffs := authed.Group("/puffs")
	{
		puffs.POST("", h.LogPuff)
		puffs.GET("", h.GetPuffs)
		puffs.GET("/stats", h.GetStats)
		puffs.GET("/leaderboard", h.GetLeaderboard)
		puffs.POST("/upload-url", withMiddleware(opts.UploadLimit, h.GenerateUploadURL)...)
		puffs.DELETE("/:id", h.DeletePuff)
	}

	// Realtime routes authenticate the token themselves
	if opts.WebSocket != nil {
		api.GET("/ws", opts.WebSocket.HandleWebSocket)
		api.GET("/ws/metrics", opts.WebSocket.HandleMetrics)
	}
}

// withMiddleware returns a fresh chain of middleware followed by handler
func withMiddleware(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(middleware)+1)
	chain = append(chain, middleware...)
	return append(chain, handler)
}
