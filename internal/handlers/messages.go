package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/util"
	"github.com/puffbuddy/backend/internal/websocket"
	"gorm.io/gorm"
)

// GetOrCreateConversation returns the id of the conversation between the caller and another user
// POST /api/v1/conversations
func (h *Handlers) GetOrCreateConversation(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		OtherUserID string `json:"other_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	if req.OtherUserID == userID {
		util.RespondBadRequest(c, "Cannot start a conversation with yourself")
		return
	}

	ctx := c.Request.Context()
	var other models.User
	if err := h.db.WithContext(ctx).Select("id").First(&other, "id = ?", req.OtherUserID).Error; err != nil {
		util.HandleDBError(c, err, "User")
		return
	}

	conversation, err := h.openConversation(ctx, userID, req.OtherUserID)
	if err != nil {
		util.RespondInternalError(c, "Failed to open conversation", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conversation.ID})
}

// openConversation finds or creates the conversation between two users. When
// the other side creates it concurrently the insert collides and the lookup
// runs again.
func (h *Handlers) openConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	for attempt := 0; ; attempt++ {
		conversation := models.NewConversation(userA, userB)
		err := h.db.WithContext(ctx).
			Where("participant_a = ? AND participant_b = ?", conversation.ParticipantA, conversation.ParticipantB).
			Attrs(models.Conversation{LastMessageAt: h.now().UTC()}).
			FirstOrCreate(conversation).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			continue
		}
		return conversation, err
	}
}

// GetConversations lists the caller's conversations, most recent first
// GET /api/v1/conversations
func (h *Handlers) GetConversations(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)
	var conversations []models.Conversation
	if err := db.Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&conversations).Error; err != nil {
		util.RespondInternalError(c, "Failed to load conversations", err)
		return
	}

	otherIDs := make([]string, 0, len(conversations))
	for _, conv := range conversations {
		otherIDs = append(otherIDs, conv.OtherParticipant(userID))
	}
	profiles, err := h.social.ProfilesByUserID(ctx, otherIDs)
	if err != nil {
		util.RespondInternalError(c, "Failed to load profiles", err)
		return
	}

	readMarker := readByPattern(userID)
	views := make([]dto.ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		view := dto.ConversationView{
			Conversation:     conv,
			OtherUserID:      conv.OtherParticipant(userID),
			OtherUserProfile: profiles[conv.OtherParticipant(userID)],
		}

		var last models.Message
		err := db.Where("conversation_id = ?", conv.ID).Order("created_at DESC").Limit(1).Find(&last).Error
		if err != nil {
			util.RespondInternalError(c, "Failed to load messages", err)
			return
		}
		if last.ID != "" {
			view.LastMessage = &last
		}

		if err := db.Model(&models.Message{}).
			Where("conversation_id = ? AND read_by NOT LIKE ?", conv.ID, readMarker).
			Count(&view.UnreadCount).Error; err != nil {
			util.RespondInternalError(c, "Failed to count unread messages", err)
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": views, "count": len(views)})
}

// GetMessages returns a conversation's messages oldest first
// GET /api/v1/conversations/:id/messages
func (h *Handlers) GetMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	conversation, ok := h.loadConversation(c, userID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var messages []models.Message
	if err := h.db.WithContext(ctx).
		Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		util.RespondInternalError(c, "Failed to load messages", err)
		return
	}

	profiles, err := h.social.ProfilesByUserID(ctx, conversation.Participants)
	if err != nil {
		util.RespondInternalError(c, "Failed to load profiles", err)
		return
	}

	views := make([]dto.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, dto.MessageView{Message: m, SenderProfile: profiles[m.SenderID]})
	}
	c.JSON(http.StatusOK, gin.H{"messages": views, "count": len(views)})
}

// SendMessage posts a message and pushes it to the other participant
// POST /api/v1/conversations/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || util.RuneLen(content) > MaxContentLength {
		util.RespondValidationError(c, "content", fmt.Sprintf("Content must be between 1 and %d characters", MaxContentLength))
		return
	}

	conversation, ok := h.loadConversation(c, userID)
	if !ok {
		return
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       userID,
		Content:        content,
		ReadBy:         models.StringList{userID},
		CreatedAt:      h.now().UTC(),
	}
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(conversation).Update("last_message_at", message.CreatedAt).Error
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to send message", err)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyUser(conversation.OtherParticipant(userID), websocket.NewMessage(websocket.MessageTypeMessageNew, websocket.MessageNewPayload{
			ConversationID: conversation.ID,
			MessageID:      message.ID,
			SenderID:       userID,
			Content:        message.Content,
			CreatedAt:      message.CreatedAt,
		}))
	}
	metrics.App().MessagesSent.Inc()
	logger.Log.Debug("Message sent", logger.WithUserID(userID), logger.WithConversationID(conversation.ID))

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// MarkConversationRead adds the caller to read_by of every message they have not read
// POST /api/v1/conversations/:id/read
func (h *Handlers) MarkConversationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	conversation, ok := h.loadConversation(c, userID)
	if !ok {
		return
	}

	marked := 0
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var unread []models.Message
		if err := tx.Where("conversation_id = ? AND read_by NOT LIKE ?", conversation.ID, readByPattern(userID)).
			Find(&unread).Error; err != nil {
			return err
		}
		for _, m := range unread {
			readBy := append(m.ReadBy, userID)
			if err := tx.Model(&m).Update("read_by", readBy).Error; err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	if err != nil {
		util.RespondInternalError(c, "Failed to mark messages read", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "marked": marked})
}

// loadConversation loads :id and checks the caller takes part in it
func (h *Handlers) loadConversation(c *gin.Context, userID string) (*models.Conversation, bool) {
	var conversation models.Conversation
	if err := h.db.WithContext(c.Request.Context()).First(&conversation, "id = ?", c.Param("id")).Error; err != nil {
		util.HandleDBError(c, err, "Conversation")
		return nil, false
	}
	if !conversation.HasParticipant(userID) {
		util.RespondForbidden(c, "Not authorized")
		return nil, false
	}
	return &conversation, true
}

// readByPattern matches a user id inside the JSON-encoded read_by list
func readByPattern(userID string) string {
	return `%"` + userID + `"%`
}
