package search

import (
	"time"

	"github.com/puffbuddy/backend/internal/models"
)

// ProfileDoc is a profile document for Elasticsearch indexing
type ProfileDoc struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

// StrainDoc is a strain document for Elasticsearch indexing
type StrainDoc struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Effects   []string  `json:"effects,omitempty"`
	Flavors   []string  `json:"flavors,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileToSearchDoc converts a Profile model to a search document
func ProfileToSearchDoc(p models.Profile) ProfileDoc {
	doc := ProfileDoc{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Tags:        p.Tags,
		JoinedAt:    p.JoinedAt,
	}
	if p.Bio != nil {
		doc.Bio = *p.Bio
	}
	return doc
}

// StrainToSearchDoc converts a Strain model to a search document
func StrainToSearchDoc(s models.Strain) StrainDoc {
	return StrainDoc{
		ID:        s.ID,
		Name:      s.Name,
		Type:      s.Type,
		Effects:   s.Effects,
		Flavors:   s.Flavors,
		CreatedAt: s.CreatedAt,
	}
}
