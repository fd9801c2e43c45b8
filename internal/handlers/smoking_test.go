package handlers

import (
	"net/http"
	"time"

	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/stats"
	"github.com/puffbuddy/backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func (suite *HandlersTestSuite) freezeClock() {
	suite.handlers.now = func() time.Time { return fixedNow }
}

func (suite *HandlersTestSuite) storePuff(user *testUser, cigarettes int, age time.Duration) {
	require.NoError(suite.T(), suite.db.Create(&models.SmokingPuff{
		UserID:     user.ID,
		Cigarettes: cigarettes,
		Timestamp:  fixedNow.Add(-age),
	}).Error)
}

func (suite *HandlersTestSuite) TestLogPuff() {
	t := suite.T()
	suite.freezeClock()
	suite.makeFriends(suite.alice, suite.bob)

	w := suite.request(http.MethodPost, "/puffs", suite.alice, map[string]interface{}{
		"cigarettes": 2,
		"method":     "joint",
		"mood":       " mellow ",
	})
	suite.requireStatus(w, http.StatusCreated)

	var resp struct {
		Puff dto.PuffView `json:"puff"`
	}
	suite.decode(w, &resp)
	assert.Equal(t, 2, resp.Puff.Cigarettes)
	assert.True(t, fixedNow.Equal(resp.Puff.Timestamp))
	if assert.NotNil(t, resp.Puff.Mood) {
		assert.Equal(t, "mellow", *resp.Puff.Mood)
	}

	assert.Equal(t, []string{websocket.MessageTypePuffLogged}, suite.notifier.typesFor(suite.bob.ID))
	assert.Empty(t, suite.notifier.typesFor(suite.carol.ID))
}

func (suite *HandlersTestSuite) TestLogPuffValidation() {
	for _, cigarettes := range []int{0, -1, 1001} {
		w := suite.request(http.MethodPost, "/puffs", suite.alice, map[string]interface{}{"cigarettes": cigarettes})
		assert.NotEqual(suite.T(), http.StatusCreated, w.Code, "cigarettes %d", cigarettes)
	}

	w := suite.request(http.MethodPost, "/puffs", suite.alice, map[string]interface{}{
		"cigarettes": 1,
		"image_id":   imageKeyFor(suite.bob),
	})
	suite.requireStatus(w, http.StatusUnprocessableEntity)
}

func (suite *HandlersTestSuite) TestGetPuffsNewestFirst() {
	t := suite.T()
	suite.freezeClock()
	suite.storePuff(suite.alice, 1, 48*time.Hour)
	suite.storePuff(suite.alice, 2, time.Hour)
	suite.storePuff(suite.bob, 5, time.Hour)

	w := suite.request(http.MethodGet, "/puffs", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		Puffs []dto.PuffView `json:"puffs"`
		Count int            `json:"count"`
	}
	suite.decode(w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.Puffs[0].Cigarettes)
	assert.Equal(t, 1, resp.Puffs[1].Cigarettes)

	w = suite.request(http.MethodGet, "/puffs?limit=1", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	suite.decode(w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 2, resp.Puffs[0].Cigarettes)
}

func (suite *HandlersTestSuite) TestGetStats() {
	t := suite.T()
	suite.freezeClock()
	suite.storePuff(suite.alice, 3, time.Hour)
	suite.storePuff(suite.alice, 2, 25*time.Hour)
	suite.storePuff(suite.alice, 1, 49*time.Hour)
	suite.storePuff(suite.alice, 4, 10*stats.Day)
	suite.storePuff(suite.alice, 5, 40*stats.Day)
	suite.storePuff(suite.bob, 100, time.Hour)

	w := suite.request(http.MethodGet, "/puffs/stats", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var summary stats.Summary
	suite.decode(w, &summary)
	assert.Equal(t, stats.Totals{Puffs: 1, Cigarettes: 3}, summary.Today)
	assert.Equal(t, stats.Totals{Puffs: 3, Cigarettes: 6}, summary.Week)
	assert.Equal(t, stats.Totals{Puffs: 4, Cigarettes: 10}, summary.Month)
	assert.Equal(t, stats.Totals{Puffs: 5, Cigarettes: 15}, summary.Total)
	assert.Equal(t, stats.Streaks{Current: 3, Longest: 3}, summary.Streaks)
}

func (suite *HandlersTestSuite) TestGetStatsEmpty() {
	w := suite.request(http.MethodGet, "/puffs/stats", suite.carol, nil)
	suite.requireStatus(w, http.StatusOK)

	var summary stats.Summary
	suite.decode(w, &summary)
	assert.Equal(suite.T(), stats.Summary{}, summary)
}

func (suite *HandlersTestSuite) TestLeaderboard() {
	t := suite.T()
	suite.freezeClock()
	suite.storePuff(suite.alice, 6, time.Hour)
	suite.storePuff(suite.bob, 4, time.Hour)
	suite.storePuff(suite.bob, 6, 3*stats.Day)
	suite.storePuff(suite.carol, 50, 8*stats.Day)

	w := suite.request(http.MethodGet, "/puffs/leaderboard", suite.carol, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		Leaderboard []stats.LeaderboardEntry `json:"leaderboard"`
		Count       int                      `json:"count"`
	}
	suite.decode(w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, stats.LeaderboardEntry{UserID: suite.bob.ID, DisplayName: "Bob", Puffs: 2, Cigarettes: 10}, resp.Leaderboard[0])
	assert.Equal(t, stats.LeaderboardEntry{UserID: suite.alice.ID, DisplayName: "Alice", Puffs: 1, Cigarettes: 6}, resp.Leaderboard[1])

	// Logging a puff drops the cached board
	w = suite.request(http.MethodPost, "/puffs", suite.carol, map[string]interface{}{"cigarettes": 20})
	suite.requireStatus(w, http.StatusCreated)

	w = suite.request(http.MethodGet, "/puffs/leaderboard", suite.carol, nil)
	suite.decode(w, &resp)
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, suite.carol.ID, resp.Leaderboard[0].UserID)
}

func (suite *HandlersTestSuite) TestDeletePuff() {
	t := suite.T()
	key := imageKeyFor(suite.alice)
	puff := models.SmokingPuff{UserID: suite.alice.ID, Cigarettes: 1, ImageID: &key, Timestamp: time.Now().UTC()}
	require.NoError(t, suite.db.Create(&puff).Error)

	w := suite.request(http.MethodDelete, "/puffs/"+puff.ID, suite.bob, nil)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.request(http.MethodDelete, "/puffs/"+puff.ID, suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.Equal(t, []string{key}, suite.images.deletedKeys())

	w = suite.request(http.MethodDelete, "/puffs/"+puff.ID, suite.alice, nil)
	suite.requireStatus(w, http.StatusNotFound)
}
