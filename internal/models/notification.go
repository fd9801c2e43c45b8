package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types
const (
	NotificationLike          = "like"
	NotificationComment       = "comment"
	NotificationRetweet       = "retweet"
	NotificationFollow        = "follow"
	NotificationFriendRequest = "friend_request"
	NotificationFriendAccept  = "friend_accept"
)

// Notification tells a user that someone interacted with them
type Notification struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index:idx_notifications_user_created" json:"user_id"`
	FromUserID string    `gorm:"size:36;not null" json:"from_user_id"`
	Type       string    `gorm:"size:32;not null" json:"type"`
	PostID     *string   `gorm:"size:36" json:"post_id,omitempty"`
	CommentID  *string   `gorm:"size:36" json:"comment_id,omitempty"`
	Message    string    `gorm:"type:text" json:"message"`
	Read       bool      `gorm:"default:false;index" json:"read"`
	CreatedAt  time.Time `gorm:"index:idx_notifications_user_created" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
