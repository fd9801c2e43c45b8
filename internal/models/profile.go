package models

import (
	"time"

	"gorm.io/gorm"
)

// SuggestedTags are assigned at random when a profile is created without tags
var SuggestedTags = []string{
	"420 Friendly",
	"Wake & Bake",
	"Couch Philosopher",
	"Snack Master",
	"Rolling Pro",
	"Cloud Chaser",
	"Bong Appétit",
	"Joint Venture",
	"Chill Chief",
	"Munchies Expert",
	"Sativa Socialite",
	"Indica Enthusiast",
	"Dab Wizard",
	"Edible Explorer",
	"Highspirational",
	"Giggle Factory",
	"Zen Stoner",
	"Herb Nerd",
	"Puff Puff Pal",
	"Green Thumb",
	"Chronic Comedian",
	"Blunt Force",
	"Weed Connoisseur",
	"Grass Guru",
	"Vape Lord",
	"Rolling Stone",
	"Baked & Blessed",
	"Stash Captain",
	"Doobie Newbie",
	"Potent Pal",
	"Chilluminati",
}

// Profile is a user's public social identity, one per user
type Profile struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	DisplayName string     `gorm:"not null" json:"display_name"`
	Bio         *string    `gorm:"type:text" json:"bio,omitempty"`
	SmokingGoal *string    `gorm:"type:text" json:"smoking_goal,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Website     *string    `json:"website,omitempty"`
	Tags        StringList `gorm:"type:text" json:"tags"`

	// Storage keys of uploaded images
	PhotoID      *string `json:"photo_id,omitempty"`
	BackgroundID *string `json:"background_id,omitempty"`

	IsSmokingNow            bool       `gorm:"default:false" json:"is_smoking_now"`
	LastSmokingStatusUpdate *time.Time `json:"last_smoking_status_update,omitempty"`

	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	if p.Tags == nil {
		p.Tags = StringList{}
	}
	return nil
}
