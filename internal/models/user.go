package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an authentication identity. Social data lives on Profile.
type User struct {
	ID    string  `gorm:"primaryKey;size:36" json:"id"`
	Email *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Name  string  `json:"name,omitempty"`

	// Native auth
	PasswordHash  *string `gorm:"type:text" json:"-"`
	EmailVerified bool    `gorm:"default:false" json:"email_verified"`
	IsAnonymous   bool    `gorm:"default:false" json:"is_anonymous"`

	// OAuth
	GoogleID *string `gorm:"uniqueIndex" json:"-"`

	// Two-factor auth (TOTP)
	TwoFactorEnabled bool       `gorm:"default:false" json:"two_factor_enabled"`
	TwoFactorSecret  *string    `gorm:"type:text" json:"-"`
	BackupCodes      StringList `gorm:"type:text" json:"-"` // sha256 hashes

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PasswordReset is a single-use password reset token
type PasswordReset struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// OAuthAccount links a user to an external identity provider account
type OAuthAccount struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:36;not null;index" json:"user_id"`
	Provider       string    `gorm:"not null;uniqueIndex:idx_oauth_provider_user" json:"provider"`
	ProviderUserID string    `gorm:"not null;uniqueIndex:idx_oauth_provider_user" json:"provider_user_id"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (p *PasswordReset) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (a *OAuthAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}
