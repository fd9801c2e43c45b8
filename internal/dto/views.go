// Package dto holds the composite response shapes returned by the API.
package dto

import (
	"github.com/puffbuddy/backend/internal/models"
)

// Friendship statuses as seen by the caller
const (
	RelationSelf     = "self"
	RelationNone     = "none"
	RelationFriends  = "friends"
	RelationSent     = "sent"
	RelationReceived = "received"
)

// Follow statuses as seen by the caller
const (
	FollowSelf         = "self"
	FollowFollowing    = "following"
	FollowNotFollowing = "not_following"
)

// ProfileView is a profile with its image references resolved to URLs
type ProfileView struct {
	models.Profile
	PhotoURL      *string `json:"photo_url"`
	BackgroundURL *string `json:"background_url"`
}

// PostView is a post as rendered in feeds and profile timelines
type PostView struct {
	models.Post
	Profile     *models.Profile `json:"profile"`
	ImageURL    *string         `json:"image_url"`
	IsLiked     bool            `json:"is_liked"`
	IsRetweeted bool            `json:"is_retweeted"`
	Comments    []CommentView   `json:"comments"`
}

// CommentView is a comment with its author's profile
type CommentView struct {
	models.Comment
	Profile *models.Profile `json:"profile"`
	IsLiked bool            `json:"is_liked"`
}

// FriendView is an accepted friendship from the caller's side
type FriendView struct {
	models.Friendship
	FriendID      string          `json:"friend_id"`
	FriendProfile *models.Profile `json:"friend_profile"`
}

// FriendRequestView is a pending request received by the caller
type FriendRequestView struct {
	models.Friendship
	RequesterProfile *models.Profile `json:"requester_profile"`
}

// UserSearchResult is a profile annotated with the caller's relation to it
type UserSearchResult struct {
	models.Profile
	FriendshipStatus string  `json:"friendship_status"`
	FriendshipID     *string `json:"friendship_id"`
}

// FriendshipStatus answers GetFriendshipStatus
type FriendshipStatus struct {
	Status       string  `json:"status"`
	FriendshipID *string `json:"friendship_id,omitempty"`
}

// FollowView is a follow row with the other party's profile
type FollowView struct {
	models.Follow
	Profile *models.Profile `json:"profile"`
}

// FollowCounts answers GetFollowCounts
type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// ConversationView is an inbox row
type ConversationView struct {
	models.Conversation
	OtherUserID      string          `json:"other_user_id"`
	OtherUserProfile *models.Profile `json:"other_user_profile"`
	LastMessage      *models.Message `json:"last_message"`
	UnreadCount      int64           `json:"unread_count"`
}

// MessageView is a direct message with its sender's profile
type MessageView struct {
	models.Message
	SenderProfile *models.Profile `json:"sender_profile"`
}

// NotificationView is a notification with the actor's profile
type NotificationView struct {
	models.Notification
	FromUserProfile *models.Profile `json:"from_user_profile"`
}

// StrainReviewView is a review with the reviewer's profile
type StrainReviewView struct {
	models.StrainReview
	Profile *models.Profile `json:"profile"`
}

// PuffView is a logged session with its photo URL
type PuffView struct {
	models.SmokingPuff
	ImageURL *string `json:"image_url"`
}
