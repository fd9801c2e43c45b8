package handlers

import (
	"net/http"
	"time"

	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type strainResponse struct {
	Strain models.Strain `json:"strain"`
}

type strainsResponse struct {
	Strains []models.Strain `json:"strains"`
	Count   int             `json:"count"`
}

func (suite *HandlersTestSuite) addStrain(user *testUser, name, strainType string) models.Strain {
	w := suite.request(http.MethodPost, "/strains", user, map[string]interface{}{
		"name":    name,
		"type":    strainType,
		"thc":     21.5,
		"effects": []string{"relaxed", "happy"},
	})
	suite.requireStatus(w, http.StatusCreated)

	var resp strainResponse
	suite.decode(w, &resp)
	return resp.Strain
}

func (suite *HandlersTestSuite) TestAddStrain() {
	t := suite.T()
	strain := suite.addStrain(suite.alice, " Blue Dream ", models.StrainHybrid)

	assert.Equal(t, "Blue Dream", strain.Name)
	assert.Equal(t, suite.alice.ID, strain.CreatedBy)
	assert.Nil(t, strain.AvgRating)
	assert.Zero(t, strain.ReviewCount)

	w := suite.request(http.MethodGet, "/strains/"+strain.ID, suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	var resp strainResponse
	suite.decode(w, &resp)
	assert.Equal(t, models.StringList{"relaxed", "happy"}, resp.Strain.Effects)
}

func (suite *HandlersTestSuite) TestAddStrainDuplicateNameIgnoresCase() {
	suite.addStrain(suite.alice, "OG Kush", models.StrainIndica)

	w := suite.request(http.MethodPost, "/strains", suite.bob, map[string]interface{}{
		"name": "og kush",
		"type": models.StrainIndica,
	})
	suite.requireStatus(w, http.StatusConflict)

	var body map[string]interface{}
	suite.decode(w, &body)
	assert.Equal(suite.T(), "A strain with this name already exists", body["message"])
}

func (suite *HandlersTestSuite) TestAddStrainValidation() {
	w := suite.request(http.MethodPost, "/strains", suite.alice, map[string]interface{}{
		"name": "Mystery",
		"type": "ruderalis",
	})
	assert.Contains(suite.T(), []int{http.StatusBadRequest, http.StatusUnprocessableEntity}, w.Code)

	w = suite.request(http.MethodPost, "/strains", suite.alice, map[string]interface{}{
		"name": "Too Strong",
		"type": models.StrainSativa,
		"thc":  120,
	})
	assert.Contains(suite.T(), []int{http.StatusBadRequest, http.StatusUnprocessableEntity}, w.Code)
}

func (suite *HandlersTestSuite) TestListAndSearchStrains() {
	t := suite.T()
	suite.addStrain(suite.alice, "Sour Diesel", models.StrainSativa)
	suite.addStrain(suite.alice, "Granddaddy Purple", models.StrainIndica)
	suite.addStrain(suite.alice, "Purple Haze", models.StrainSativa)

	w := suite.request(http.MethodGet, "/strains", suite.bob, nil)
	var list strainsResponse
	suite.decode(w, &list)
	assert.Equal(t, 3, list.Count)

	w = suite.request(http.MethodGet, "/strains/search?q=PURPLE", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	var found strainsResponse
	suite.decode(w, &found)
	require.Equal(t, 2, found.Count)
	assert.Equal(t, "Granddaddy Purple", found.Strains[0].Name)
	assert.Equal(t, "Purple Haze", found.Strains[1].Name)

	w = suite.request(http.MethodGet, "/strains/search?q=100%25", suite.bob, nil)
	suite.decode(w, &found)
	assert.Zero(t, found.Count)
}

func (suite *HandlersTestSuite) TestStrainReviewAveragesAndUpserts() {
	t := suite.T()
	strain := suite.addStrain(suite.alice, "Jack Herer", models.StrainSativa)

	review := func(user *testUser, rating int) models.Strain {
		w := suite.request(http.MethodPost, "/strains/"+strain.ID+"/reviews", user, map[string]interface{}{
			"rating": rating,
			"review": "solid",
		})
		suite.requireStatus(w, http.StatusOK)
		var resp struct {
			Review models.StrainReview `json:"review"`
			Strain models.Strain       `json:"strain"`
		}
		suite.decode(w, &resp)
		assert.Equal(t, rating, resp.Review.Rating)
		return resp.Strain
	}

	review(suite.alice, 5)
	review(suite.bob, 4)
	updated := review(suite.carol, 4)
	require.NotNil(t, updated.AvgRating)
	assert.Equal(t, 4.3, *updated.AvgRating)
	assert.Equal(t, 3, updated.ReviewCount)

	// A second review by the same user replaces the first
	updated = review(suite.alice, 1)
	require.NotNil(t, updated.AvgRating)
	assert.Equal(t, 3.0, *updated.AvgRating)
	assert.Equal(t, 3, updated.ReviewCount)

	w := suite.request(http.MethodGet, "/strains/"+strain.ID+"/reviews", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	var reviews struct {
		Reviews []dto.StrainReviewView `json:"reviews"`
		Count   int                    `json:"count"`
	}
	suite.decode(w, &reviews)
	assert.Equal(t, 3, reviews.Count)
	for _, r := range reviews.Reviews {
		assert.NotNil(t, r.Profile)
	}
}

func (suite *HandlersTestSuite) TestEditedReviewMovesToTop() {
	t := suite.T()
	strain := suite.addStrain(suite.alice, "Sour Diesel", models.StrainSativa)

	clock := time.Date(2024, 4, 20, 16, 20, 0, 0, time.UTC)
	suite.handlers.now = func() time.Time { return clock }

	post := func(user *testUser, rating int) {
		w := suite.request(http.MethodPost, "/strains/"+strain.ID+"/reviews", user, map[string]interface{}{"rating": rating})
		suite.requireStatus(w, http.StatusOK)
	}

	post(suite.alice, 3)
	clock = clock.Add(time.Minute)
	post(suite.bob, 4)
	clock = clock.Add(time.Minute)
	post(suite.alice, 5)

	w := suite.request(http.MethodGet, "/strains/"+strain.ID+"/reviews", suite.carol, nil)
	suite.requireStatus(w, http.StatusOK)
	var resp struct {
		Reviews []dto.StrainReviewView `json:"reviews"`
	}
	suite.decode(w, &resp)
	require.Len(t, resp.Reviews, 2)
	assert.Equal(t, suite.alice.ID, resp.Reviews[0].UserID)
	assert.Equal(t, 5, resp.Reviews[0].Rating)
	assert.True(t, clock.Equal(resp.Reviews[0].CreatedAt), "created_at %s", resp.Reviews[0].CreatedAt)
	assert.Equal(t, suite.bob.ID, resp.Reviews[1].UserID)
}

func (suite *HandlersTestSuite) TestStrainReviewRatingBounds() {
	strain := suite.addStrain(suite.alice, "Northern Lights", models.StrainIndica)

	for _, rating := range []int{0, 6} {
		w := suite.request(http.MethodPost, "/strains/"+strain.ID+"/reviews", suite.bob, map[string]interface{}{"rating": rating})
		assert.NotEqual(suite.T(), http.StatusOK, w.Code, "rating %d", rating)
	}
}

func (suite *HandlersTestSuite) TestReviewUnknownStrain() {
	w := suite.request(http.MethodPost, "/strains/00000000-0000-0000-0000-000000000000/reviews", suite.bob, map[string]interface{}{"rating": 3})
	suite.requireStatus(w, http.StatusNotFound)
}

func (suite *HandlersTestSuite) TestToggleFavorite() {
	t := suite.T()
	strain := suite.addStrain(suite.alice, "Gelato", models.StrainHybrid)

	w := suite.request(http.MethodPost, "/strains/"+strain.ID+"/favorite", suite.bob, nil)
	assert.JSONEq(t, `{"action":"added"}`, w.Body.String())

	w = suite.request(http.MethodGet, "/strains/favorites", suite.bob, nil)
	var favorites strainsResponse
	suite.decode(w, &favorites)
	require.Equal(t, 1, favorites.Count)
	assert.Equal(t, strain.ID, favorites.Strains[0].ID)

	w = suite.request(http.MethodPost, "/strains/"+strain.ID+"/favorite", suite.bob, nil)
	assert.JSONEq(t, `{"action":"removed"}`, w.Body.String())

	w = suite.request(http.MethodGet, "/strains/favorites", suite.bob, nil)
	assert.JSONEq(t, `{"strains":[],"count":0}`, w.Body.String())
}
