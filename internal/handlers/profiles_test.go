package handlers

import (
	"net/http"

	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileResponse struct {
	Profile *struct {
		models.Profile
		PhotoURL      *string `json:"photo_url"`
		BackgroundURL *string `json:"background_url"`
	} `json:"profile"`
}

func (suite *HandlersTestSuite) TestGetCurrentProfileNullWithoutProfile() {
	newcomer := suite.createUserWithoutProfile("new@example.com")

	w := suite.request(http.MethodGet, "/profiles/me", newcomer, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(suite.T(), `{"profile":null}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestCreateProfileAssignsRandomTags() {
	t := suite.T()
	newcomer := suite.createUserWithoutProfile("new@example.com")

	w := suite.request(http.MethodPost, "/profiles", newcomer, map[string]interface{}{
		"display_name": "  Newbie  ",
		"bio":          "just here for the vibes",
	})
	suite.requireStatus(w, http.StatusCreated)

	var resp profileResponse
	suite.decode(w, &resp)
	if assert.NotNil(t, resp.Profile) {
		assert.Equal(t, "Newbie", resp.Profile.DisplayName)
		assert.Len(t, resp.Profile.Tags, randomTagCount)
		for _, tag := range resp.Profile.Tags {
			assert.Contains(t, models.SuggestedTags, tag)
		}
	}
}

func (suite *HandlersTestSuite) TestCreateProfileKeepsGivenTags() {
	newcomer := suite.createUserWithoutProfile("new@example.com")

	w := suite.request(http.MethodPost, "/profiles", newcomer, map[string]interface{}{
		"display_name": "Newbie",
		"tags":         []string{"sativa", " ", "sativa", "edibles"},
	})
	suite.requireStatus(w, http.StatusCreated)

	var resp profileResponse
	suite.decode(w, &resp)
	assert.Equal(suite.T(), models.StringList{"sativa", "edibles"}, resp.Profile.Tags)
}

func (suite *HandlersTestSuite) TestCreateProfileConflict() {
	w := suite.request(http.MethodPost, "/profiles", suite.alice, map[string]interface{}{
		"display_name": "Alice Again",
	})
	suite.requireStatus(w, http.StatusConflict)

	var body map[string]interface{}
	suite.decode(w, &body)
	assert.Equal(suite.T(), "Profile already exists", body["message"])
}

func (suite *HandlersTestSuite) TestCreateProfileRequiresDisplayName() {
	newcomer := suite.createUserWithoutProfile("new@example.com")

	w := suite.request(http.MethodPost, "/profiles", newcomer, map[string]interface{}{
		"display_name": "   ",
	})
	suite.requireStatus(w, http.StatusUnprocessableEntity)
}

func (suite *HandlersTestSuite) TestUpdateProfilePartial() {
	t := suite.T()

	w := suite.request(http.MethodPatch, "/profiles/me", suite.alice, map[string]interface{}{
		"bio": "rolling since 2010",
	})
	suite.requireStatus(w, http.StatusOK)

	var resp profileResponse
	suite.decode(w, &resp)
	assert.Equal(t, "Alice", resp.Profile.DisplayName)
	if assert.NotNil(t, resp.Profile.Bio) {
		assert.Equal(t, "rolling since 2010", *resp.Profile.Bio)
	}
	assert.Equal(t, models.StringList{"chill"}, resp.Profile.Tags)
}

func (suite *HandlersTestSuite) TestUpdateProfileWithoutProfile() {
	newcomer := suite.createUserWithoutProfile("new@example.com")

	w := suite.request(http.MethodPatch, "/profiles/me", newcomer, map[string]interface{}{"bio": "hi"})
	suite.requireStatus(w, http.StatusNotFound)
}

func (suite *HandlersTestSuite) TestGetProfileOfOtherUser() {
	w := suite.request(http.MethodGet, "/profiles/"+suite.bob.ID, suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp profileResponse
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "Bob", resp.Profile.DisplayName)
}

func (suite *HandlersTestSuite) TestSearchProfilesExcludesCaller() {
	t := suite.T()
	bio := "Alice's neighbour"
	suite.db.Model(&models.Profile{}).Where("user_id = ?", suite.bob.ID).Update("bio", bio)

	w := suite.request(http.MethodGet, "/profiles/search?q=alice", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		Profiles []models.Profile `json:"profiles"`
		Count    int              `json:"count"`
	}
	suite.decode(w, &resp)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, suite.bob.ID, resp.Profiles[0].UserID)
}

func (suite *HandlersTestSuite) TestSearchProfilesBlankQuery() {
	w := suite.request(http.MethodGet, "/profiles/search?q=%20", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(suite.T(), `{"profiles":[],"count":0}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestUpdateSmokingStatusNotifiesFriends() {
	t := suite.T()
	suite.makeFriends(suite.alice, suite.bob)

	w := suite.request(http.MethodPut, "/profiles/me/smoking-status", suite.alice, map[string]interface{}{
		"is_smoking_now": true,
	})
	suite.requireStatus(w, http.StatusOK)

	var resp profileResponse
	suite.decode(w, &resp)
	assert.True(t, resp.Profile.IsSmokingNow)
	assert.NotNil(t, resp.Profile.LastSmokingStatusUpdate)

	assert.Equal(t, []string{websocket.MessageTypeSmokingStatus}, suite.notifier.typesFor(suite.bob.ID))
	assert.Empty(t, suite.notifier.typesFor(suite.carol.ID))
}

func (suite *HandlersTestSuite) TestUpdateSmokingStatusRequiresFlag() {
	w := suite.request(http.MethodPut, "/profiles/me/smoking-status", suite.alice, map[string]interface{}{})
	assert.NotEqual(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateProfilePhotoReplacesPrevious() {
	t := suite.T()
	first := imageKeyFor(suite.alice)
	second := imageKeyFor(suite.alice)

	w := suite.request(http.MethodPut, "/profiles/me/photo", suite.alice, map[string]string{"photo_id": first})
	suite.requireStatus(w, http.StatusOK)

	w = suite.request(http.MethodPut, "/profiles/me/photo", suite.alice, map[string]string{"photo_id": second})
	suite.requireStatus(w, http.StatusOK)

	var resp profileResponse
	suite.decode(w, &resp)
	if assert.NotNil(t, resp.Profile.PhotoURL) {
		assert.Equal(t, suite.images.URL(second), *resp.Profile.PhotoURL)
	}
	assert.Equal(t, []string{first}, suite.images.deletedKeys())

	w = suite.request(http.MethodGet, "/profiles/"+suite.alice.ID+"/photo-url", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	var urlResp struct {
		URL *string `json:"url"`
	}
	suite.decode(w, &urlResp)
	if assert.NotNil(t, urlResp.URL) {
		assert.Equal(t, suite.images.URL(second), *urlResp.URL)
	}
}

func (suite *HandlersTestSuite) TestUpdateBackgroundReplacesPrevious() {
	t := suite.T()
	first := imageKeyFor(suite.alice)
	second := imageKeyFor(suite.alice)

	for _, key := range []string{first, second, second} {
		w := suite.request(http.MethodPut, "/profiles/me/background", suite.alice, map[string]string{"background_id": key})
		suite.requireStatus(w, http.StatusOK)
	}

	// Setting the same key again keeps the stored object
	assert.Equal(t, []string{first}, suite.images.deletedKeys())

	var profile models.Profile
	require.NoError(t, suite.db.Where("user_id = ?", suite.alice.ID).First(&profile).Error)
	if assert.NotNil(t, profile.BackgroundID) {
		assert.Equal(t, second, *profile.BackgroundID)
	}
	assert.Nil(t, profile.PhotoID)
}

func (suite *HandlersTestSuite) TestUpdateProfilePhotoRejectsForeignKey() {
	w := suite.request(http.MethodPut, "/profiles/me/background", suite.alice, map[string]string{
		"background_id": imageKeyFor(suite.bob),
	})
	suite.requireStatus(w, http.StatusUnprocessableEntity)
}

func (suite *HandlersTestSuite) TestGetSuggestedTags() {
	w := suite.request(http.MethodGet, "/profiles/tags", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		Tags []string `json:"tags"`
	}
	suite.decode(w, &resp)
	assert.ElementsMatch(suite.T(), models.SuggestedTags, resp.Tags)
}
