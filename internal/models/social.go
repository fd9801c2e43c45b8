package models

import (
	"time"

	"gorm.io/gorm"
)

// Friendship statuses
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship is a friend request that becomes mutual once accepted.
// At most one row exists per unordered pair of users.
type Friendship struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	RequesterID string    `gorm:"size:36;not null;index" json:"requester_id"`
	ReceiverID  string    `gorm:"size:36;not null;index" json:"receiver_id"`
	Status      string    `gorm:"size:16;not null;default:pending" json:"status"`
	PairKey     string    `gorm:"size:80;uniqueIndex" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FriendshipPairKey identifies the unordered pair, so A->B and B->A collide
func FriendshipPairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// OtherParty returns the user on the other side of the friendship
func (f *Friendship) OtherParty(userID string) string {
	if f.RequesterID == userID {
		return f.ReceiverID
	}
	return f.RequesterID
}

// Involves reports whether userID is one of the two parties
func (f *Friendship) Involves(userID string) bool {
	return f.RequesterID == userID || f.ReceiverID == userID
}

// Follow is a one-directional subscription to another user's posts
type Follow struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FollowerID  string    `gorm:"size:36;not null;uniqueIndex:idx_follow_pair;index" json:"follower_id"`
	FollowingID string    `gorm:"size:36;not null;uniqueIndex:idx_follow_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	if f.Status == "" {
		f.Status = FriendshipPending
	}
	f.PairKey = FriendshipPairKey(f.RequesterID, f.ReceiverID)
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}
