package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a direct-message thread between exactly two users.
// ParticipantA sorts before ParticipantB so each pair maps to one row.
type Conversation struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ParticipantA  string    `gorm:"size:36;not null;uniqueIndex:idx_conversation_pair" json:"-"`
	ParticipantB  string    `gorm:"size:36;not null;uniqueIndex:idx_conversation_pair;index" json:"-"`
	Participants  []string  `gorm:"-" json:"participants"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewConversation builds a conversation with sorted participants
func NewConversation(userA, userB string) *Conversation {
	if userB < userA {
		userA, userB = userB, userA
	}
	return &Conversation{
		ParticipantA: userA,
		ParticipantB: userB,
		Participants: []string{userA, userB},
	}
}

// HasParticipant reports whether userID belongs to the conversation
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the participant that is not userID
func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// Message is a direct message inside a conversation
type Message struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string     `gorm:"size:36;not null;index" json:"conversation_id"`
	SenderID       string     `gorm:"size:36;not null" json:"sender_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	ReadBy         StringList `gorm:"type:text" json:"read_by"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = time.Now().UTC()
	}
	return nil
}

func (c *Conversation) AfterFind(tx *gorm.DB) error {
	c.Participants = []string{c.ParticipantA, c.ParticipantB}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	if m.ReadBy == nil {
		m.ReadBy = StringList{}
	}
	return nil
}
