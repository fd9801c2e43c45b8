package handlers

import (
	"context"
	"net/http"

	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =============================================================================
// FRIEND TESTS
// =============================================================================

func (suite *HandlersTestSuite) sendFriendRequest(from, to *testUser) models.Friendship {
	w := suite.request(http.MethodPost, "/friends/requests", from, map[string]string{"receiver_id": to.ID})
	suite.requireStatus(w, http.StatusCreated)

	var resp struct {
		Friendship models.Friendship `json:"friendship"`
	}
	suite.decode(w, &resp)
	return resp.Friendship
}

func (suite *HandlersTestSuite) TestFriendRequestFlow() {
	t := suite.T()

	request := suite.sendFriendRequest(suite.alice, suite.bob)
	assert.Equal(t, models.FriendshipPending, request.Status)
	assert.EqualValues(t, 1, suite.countNotifications(suite.bob.ID, models.NotificationFriendRequest))
	assert.Equal(t, []string{websocket.MessageTypeNotification}, suite.notifier.typesFor(suite.bob.ID))

	// Bob sees the pending request
	w := suite.request(http.MethodGet, "/friends/requests", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	var pending struct {
		Requests []dto.FriendRequestView `json:"requests"`
		Count    int                     `json:"count"`
	}
	suite.decode(w, &pending)
	require.Equal(t, 1, pending.Count)
	assert.Equal(t, suite.alice.ID, pending.Requests[0].RequesterID)
	if assert.NotNil(t, pending.Requests[0].RequesterProfile) {
		assert.Equal(t, "Alice", pending.Requests[0].RequesterProfile.DisplayName)
	}

	// Status from both sides
	w = suite.request(http.MethodGet, "/friends/status/"+suite.bob.ID, suite.alice, nil)
	var status dto.FriendshipStatus
	suite.decode(w, &status)
	assert.Equal(t, dto.RelationSent, status.Status)

	w = suite.request(http.MethodGet, "/friends/status/"+suite.alice.ID, suite.bob, nil)
	suite.decode(w, &status)
	assert.Equal(t, dto.RelationReceived, status.Status)

	// Accept
	w = suite.request(http.MethodPost, "/friends/requests/"+request.ID+"/accept", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.EqualValues(t, 1, suite.countNotifications(suite.alice.ID, models.NotificationFriendAccept))

	w = suite.request(http.MethodGet, "/friends", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	var friends struct {
		Friends []dto.FriendView `json:"friends"`
		Count   int              `json:"count"`
	}
	suite.decode(w, &friends)
	require.Equal(t, 1, friends.Count)
	assert.Equal(t, suite.bob.ID, friends.Friends[0].FriendID)

	w = suite.request(http.MethodGet, "/friends/status/"+suite.alice.ID, suite.bob, nil)
	suite.decode(w, &status)
	assert.Equal(t, dto.RelationFriends, status.Status)
}

func (suite *HandlersTestSuite) TestFriendRequestToSelf() {
	w := suite.request(http.MethodPost, "/friends/requests", suite.alice, map[string]string{"receiver_id": suite.alice.ID})
	suite.requireStatus(w, http.StatusBadRequest)
}

func (suite *HandlersTestSuite) TestFriendRequestToUnknownUser() {
	w := suite.request(http.MethodPost, "/friends/requests", suite.alice, map[string]string{
		"receiver_id": "00000000-0000-0000-0000-000000000000",
	})
	suite.requireStatus(w, http.StatusNotFound)
}

func (suite *HandlersTestSuite) TestFriendRequestDuplicateEitherDirection() {
	suite.sendFriendRequest(suite.alice, suite.bob)

	w := suite.request(http.MethodPost, "/friends/requests", suite.alice, map[string]string{"receiver_id": suite.bob.ID})
	suite.requireStatus(w, http.StatusConflict)

	w = suite.request(http.MethodPost, "/friends/requests", suite.bob, map[string]string{"receiver_id": suite.alice.ID})
	suite.requireStatus(w, http.StatusConflict)
}

func (suite *HandlersTestSuite) TestCrossedFriendRequestsCollide() {
	t := suite.T()
	// Bob's request lands after Alice's existence check passed
	require.NoError(t, suite.db.Create(&models.Friendship{RequesterID: suite.bob.ID, ReceiverID: suite.alice.ID}).Error)

	err := suite.handlers.createFriendRequest(context.Background(),
		&models.Friendship{RequesterID: suite.alice.ID, ReceiverID: suite.bob.ID},
		&models.Notification{UserID: suite.bob.ID, FromUserID: suite.alice.ID, Type: models.NotificationFriendRequest},
	)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var rows int64
	require.NoError(t, suite.db.Model(&models.Friendship{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
	assert.Zero(t, suite.countNotifications(suite.bob.ID, models.NotificationFriendRequest))
}

func (suite *HandlersTestSuite) TestOnlyReceiverCanAnswerRequest() {
	request := suite.sendFriendRequest(suite.alice, suite.bob)

	w := suite.request(http.MethodPost, "/friends/requests/"+request.ID+"/accept", suite.alice, nil)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.request(http.MethodPost, "/friends/requests/"+request.ID+"/decline", suite.carol, nil)
	suite.requireStatus(w, http.StatusForbidden)
}

func (suite *HandlersTestSuite) TestAcceptAlreadyAcceptedRequest() {
	request := suite.sendFriendRequest(suite.alice, suite.bob)

	w := suite.request(http.MethodPost, "/friends/requests/"+request.ID+"/accept", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)

	w = suite.request(http.MethodPost, "/friends/requests/"+request.ID+"/accept", suite.bob, nil)
	suite.requireStatus(w, http.StatusBadRequest)
}

func (suite *HandlersTestSuite) TestDeclineRemovesRequest() {
	request := suite.sendFriendRequest(suite.alice, suite.bob)

	w := suite.request(http.MethodPost, "/friends/requests/"+request.ID+"/decline", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)

	var count int64
	suite.db.Model(&models.Friendship{}).Count(&count)
	assert.Zero(suite.T(), count)

	// A fresh request is allowed after a decline
	suite.sendFriendRequest(suite.alice, suite.bob)
}

func (suite *HandlersTestSuite) TestRemoveFriend() {
	t := suite.T()
	friendship := models.Friendship{RequesterID: suite.alice.ID, ReceiverID: suite.bob.ID, Status: models.FriendshipAccepted}
	require.NoError(t, suite.db.Create(&friendship).Error)

	w := suite.request(http.MethodDelete, "/friends/"+friendship.ID, suite.carol, nil)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.request(http.MethodDelete, "/friends/"+friendship.ID, suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)

	w = suite.request(http.MethodGet, "/friends", suite.alice, nil)
	assert.JSONEq(t, `{"friends":[],"count":0}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestSearchUsersIncludesStatus() {
	t := suite.T()
	request := suite.sendFriendRequest(suite.alice, suite.bob)

	w := suite.request(http.MethodGet, "/friends/search?q=b", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		Users []dto.UserSearchResult `json:"users"`
		Count int                    `json:"count"`
	}
	suite.decode(w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, suite.bob.ID, resp.Users[0].UserID)
	assert.Equal(t, dto.RelationSent, resp.Users[0].FriendshipStatus)
	if assert.NotNil(t, resp.Users[0].FriendshipID) {
		assert.Equal(t, request.ID, *resp.Users[0].FriendshipID)
	}
}

func (suite *HandlersTestSuite) TestFriendshipStatusSelf() {
	w := suite.request(http.MethodGet, "/friends/status/"+suite.alice.ID, suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var status dto.FriendshipStatus
	suite.decode(w, &status)
	assert.Equal(suite.T(), dto.RelationSelf, status.Status)
}

// =============================================================================
// FOLLOW TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestFollowAndUnfollow() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/users/"+suite.bob.ID+"/follow", suite.alice, nil)
	suite.requireStatus(w, http.StatusCreated)
	assert.EqualValues(t, 1, suite.countNotifications(suite.bob.ID, models.NotificationFollow))

	w = suite.request(http.MethodGet, "/users/"+suite.bob.ID+"/follow-status", suite.alice, nil)
	assert.JSONEq(t, `{"status":"following"}`, w.Body.String())

	w = suite.request(http.MethodGet, "/users/"+suite.bob.ID+"/followers", suite.carol, nil)
	suite.requireStatus(w, http.StatusOK)
	var followers struct {
		Followers []dto.FollowView `json:"followers"`
		Count     int              `json:"count"`
	}
	suite.decode(w, &followers)
	require.Equal(t, 1, followers.Count)
	assert.Equal(t, suite.alice.ID, followers.Followers[0].FollowerID)

	w = suite.request(http.MethodGet, "/users/"+suite.alice.ID+"/follow-counts", suite.alice, nil)
	var counts dto.FollowCounts
	suite.decode(w, &counts)
	assert.EqualValues(t, 0, counts.Followers)
	assert.EqualValues(t, 1, counts.Following)

	w = suite.request(http.MethodDelete, "/users/"+suite.bob.ID+"/follow", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	w = suite.request(http.MethodGet, "/users/"+suite.bob.ID+"/follow-status", suite.alice, nil)
	assert.JSONEq(t, `{"status":"not_following"}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestFollowSelf() {
	w := suite.request(http.MethodPost, "/users/"+suite.alice.ID+"/follow", suite.alice, nil)
	suite.requireStatus(w, http.StatusBadRequest)

	w = suite.request(http.MethodGet, "/users/"+suite.alice.ID+"/follow-status", suite.alice, nil)
	assert.JSONEq(suite.T(), `{"status":"self"}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestFollowTwiceConflicts() {
	w := suite.request(http.MethodPost, "/users/"+suite.bob.ID+"/follow", suite.alice, nil)
	suite.requireStatus(w, http.StatusCreated)

	w = suite.request(http.MethodPost, "/users/"+suite.bob.ID+"/follow", suite.alice, nil)
	suite.requireStatus(w, http.StatusConflict)
}

func (suite *HandlersTestSuite) TestUnfollowWhenNotFollowing() {
	w := suite.request(http.MethodDelete, "/users/"+suite.bob.ID+"/follow", suite.alice, nil)
	suite.requireStatus(w, http.StatusNotFound)

	var body map[string]interface{}
	suite.decode(w, &body)
	assert.Equal(suite.T(), "Not following this user", body["message"])
}
