package handlers

import (
	"net/http"

	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) openConversation(from, to *testUser) string {
	w := suite.request(http.MethodPost, "/conversations", from, map[string]string{"other_user_id": to.ID})
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		ConversationID string `json:"conversation_id"`
	}
	suite.decode(w, &resp)
	require.NotEmpty(suite.T(), resp.ConversationID)
	return resp.ConversationID
}

func (suite *HandlersTestSuite) sendMessage(from *testUser, conversationID, content string) {
	w := suite.request(http.MethodPost, "/conversations/"+conversationID+"/messages", from, map[string]string{"content": content})
	suite.requireStatus(w, http.StatusCreated)
}

type conversationsResponse struct {
	Conversations []dto.ConversationView `json:"conversations"`
	Count         int                    `json:"count"`
}

func (suite *HandlersTestSuite) TestConversationIsSharedBetweenParticipants() {
	first := suite.openConversation(suite.alice, suite.bob)
	second := suite.openConversation(suite.bob, suite.alice)
	assert.Equal(suite.T(), first, second)
}

func (suite *HandlersTestSuite) TestConversationWithSelf() {
	w := suite.request(http.MethodPost, "/conversations", suite.alice, map[string]string{"other_user_id": suite.alice.ID})
	suite.requireStatus(w, http.StatusBadRequest)
}

func (suite *HandlersTestSuite) TestMessagesUnreadAndMarkRead() {
	t := suite.T()
	conversationID := suite.openConversation(suite.alice, suite.bob)

	suite.sendMessage(suite.alice, conversationID, "yo")
	suite.sendMessage(suite.alice, conversationID, "sesh later?")
	assert.Equal(t, []string{websocket.MessageTypeMessageNew, websocket.MessageTypeMessageNew}, suite.notifier.typesFor(suite.bob.ID))

	// Sender has read their own messages
	w := suite.request(http.MethodGet, "/conversations", suite.alice, nil)
	var inbox conversationsResponse
	suite.decode(w, &inbox)
	require.Equal(t, 1, inbox.Count)
	assert.Zero(t, inbox.Conversations[0].UnreadCount)

	w = suite.request(http.MethodGet, "/conversations", suite.bob, nil)
	suite.decode(w, &inbox)
	require.Equal(t, 1, inbox.Count)
	assert.EqualValues(t, 2, inbox.Conversations[0].UnreadCount)
	assert.Equal(t, suite.alice.ID, inbox.Conversations[0].OtherUserID)
	if assert.NotNil(t, inbox.Conversations[0].LastMessage) {
		assert.Equal(t, "sesh later?", inbox.Conversations[0].LastMessage.Content)
	}

	w = suite.request(http.MethodPost, "/conversations/"+conversationID+"/read", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(t, `{"success":true,"marked":2}`, w.Body.String())

	w = suite.request(http.MethodGet, "/conversations", suite.bob, nil)
	suite.decode(w, &inbox)
	assert.Zero(t, inbox.Conversations[0].UnreadCount)

	w = suite.request(http.MethodGet, "/conversations/"+conversationID+"/messages", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	var messages struct {
		Messages []dto.MessageView `json:"messages"`
	}
	suite.decode(w, &messages)
	require.Len(t, messages.Messages, 2)
	assert.Equal(t, "yo", messages.Messages[0].Content)
	assert.ElementsMatch(t, models.StringList{suite.alice.ID, suite.bob.ID}, messages.Messages[0].ReadBy)
	if assert.NotNil(t, messages.Messages[0].SenderProfile) {
		assert.Equal(t, "Alice", messages.Messages[0].SenderProfile.DisplayName)
	}
}

func (suite *HandlersTestSuite) TestConversationOutsiderForbidden() {
	conversationID := suite.openConversation(suite.alice, suite.bob)

	w := suite.request(http.MethodGet, "/conversations/"+conversationID+"/messages", suite.carol, nil)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.request(http.MethodPost, "/conversations/"+conversationID+"/messages", suite.carol, map[string]string{"content": "hi"})
	suite.requireStatus(w, http.StatusForbidden)
}

func (suite *HandlersTestSuite) TestInboxOrderedByLatestMessage() {
	t := suite.T()
	withBob := suite.openConversation(suite.alice, suite.bob)
	withCarol := suite.openConversation(suite.alice, suite.carol)

	suite.sendMessage(suite.carol, withCarol, "first")
	suite.sendMessage(suite.bob, withBob, "second")

	w := suite.request(http.MethodGet, "/conversations", suite.alice, nil)
	var inbox conversationsResponse
	suite.decode(w, &inbox)
	require.Equal(t, 2, inbox.Count)
	assert.Equal(t, withBob, inbox.Conversations[0].ID)
	assert.Equal(t, withCarol, inbox.Conversations[1].ID)
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestNotificationsLifecycle() {
	t := suite.T()
	post := suite.createPost(suite.bob, "hi")
	suite.request(http.MethodPost, "/posts/"+post.ID+"/like", suite.alice, nil)
	suite.request(http.MethodPost, "/users/"+suite.bob.ID+"/follow", suite.carol, nil)

	w := suite.request(http.MethodGet, "/notifications/unread-count", suite.bob, nil)
	assert.JSONEq(t, `{"unread_count":2}`, w.Body.String())

	w = suite.request(http.MethodGet, "/notifications", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	var resp struct {
		Notifications []dto.NotificationView `json:"notifications"`
		Count         int                    `json:"count"`
	}
	suite.decode(w, &resp)
	require.Equal(t, 2, resp.Count)
	for _, n := range resp.Notifications {
		assert.NotNil(t, n.FromUserProfile)
		assert.False(t, n.Read)
	}

	// Only the owner can mark a notification read
	first := resp.Notifications[0]
	w = suite.request(http.MethodPost, "/notifications/"+first.ID+"/read", suite.alice, nil)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.request(http.MethodPost, "/notifications/"+first.ID+"/read", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)

	w = suite.request(http.MethodGet, "/notifications/unread-count", suite.bob, nil)
	assert.JSONEq(t, `{"unread_count":1}`, w.Body.String())

	w = suite.request(http.MethodPost, "/notifications/read-all", suite.bob, nil)
	assert.JSONEq(t, `{"success":true,"marked":1}`, w.Body.String())

	w = suite.request(http.MethodGet, "/notifications/unread-count", suite.bob, nil)
	assert.JSONEq(t, `{"unread_count":0}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestMarkUnknownNotification() {
	w := suite.request(http.MethodPost, "/notifications/00000000-0000-0000-0000-000000000000/read", suite.alice, nil)
	suite.requireStatus(w, http.StatusNotFound)
}
