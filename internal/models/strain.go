package models

import (
	"time"

	"gorm.io/gorm"
)

// Strain types
const (
	StrainIndica = "indica"
	StrainSativa = "sativa"
	StrainHybrid = "hybrid"
)

// Strain is a community-maintained catalog entry
type Strain struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Name        string     `gorm:"not null;uniqueIndex" json:"name"`
	Type        string     `gorm:"size:16;not null" json:"type"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	THC         *float64   `json:"thc,omitempty"`
	CBD         *float64   `json:"cbd,omitempty"`
	Effects     StringList `gorm:"type:text" json:"effects"`
	Flavors     StringList `gorm:"type:text" json:"flavors"`
	AvgRating   *float64   `json:"avg_rating"`
	ReviewCount int        `gorm:"default:0" json:"review_count"`
	CreatedBy   string     `gorm:"size:36" json:"created_by"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StrainReview is one user's rating of a strain; a user has at most one per strain
type StrainReview struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	StrainID  string    `gorm:"size:36;not null;uniqueIndex:idx_strain_review_pair;index" json:"strain_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_strain_review_pair" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Review    *string   `gorm:"type:text" json:"review,omitempty"`
	Method    *string   `json:"method,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StrainFavorite bookmarks a strain for a user
type StrainFavorite struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_strain_favorite_pair;index" json:"user_id"`
	StrainID  string    `gorm:"size:36;not null;uniqueIndex:idx_strain_favorite_pair" json:"strain_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Strain) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	if s.Effects == nil {
		s.Effects = StringList{}
	}
	if s.Flavors == nil {
		s.Flavors = StringList{}
	}
	return nil
}

func (r *StrainReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

func (f *StrainFavorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}
