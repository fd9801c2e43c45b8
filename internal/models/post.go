package models

import (
	"time"

	"gorm.io/gorm"
)

// Post types
const (
	PostTypeText  = "text"
	PostTypePhoto = "photo"
)

// Post is a feed entry
type Post struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Type         string    `gorm:"size:16;not null;default:text" json:"type"`
	ImageID      *string   `json:"image_id,omitempty"`
	Faded        *bool     `json:"faded,omitempty"`
	LikeCount    int       `gorm:"default:0" json:"like_count"`
	CommentCount int       `gorm:"default:0" json:"comment_count"`
	RetweetCount int       `gorm:"default:0" json:"retweet_count"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comment is a reply on a post
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"size:36;not null;index" json:"post_id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	LikeCount int       `gorm:"default:0" json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostLike records that a user liked a post
type PostLike struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_post_like_pair" json:"post_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_post_like_pair;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike records that a user liked a comment
type CommentLike struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CommentID string    `gorm:"size:36;not null;uniqueIndex:idx_comment_like_pair" json:"comment_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_comment_like_pair;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Retweet records that a user reshared a post, optionally with a comment
type Retweet struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_retweet_pair" json:"post_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_retweet_pair;index" json:"user_id"`
	Comment   *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.Type == "" {
		p.Type = PostTypeText
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (r *Retweet) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
