package models

import (
	"time"

	"gorm.io/gorm"
)

// SmokingPuff is one logged session. Cigarettes is the quantity consumed.
type SmokingPuff struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;index:idx_puffs_user_timestamp" json:"user_id"`
	Cigarettes int       `gorm:"not null" json:"cigarettes"`
	Location   *string   `json:"location,omitempty"`
	Mood       *string   `json:"mood,omitempty"`
	Notes      *string   `gorm:"type:text" json:"notes,omitempty"`
	Method     *string   `json:"method,omitempty"`
	Strain     *string   `json:"strain,omitempty"`
	ImageID    *string   `json:"image_id,omitempty"`
	Timestamp  time.Time `gorm:"not null;index;index:idx_puffs_user_timestamp" json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *SmokingPuff) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	return nil
}
