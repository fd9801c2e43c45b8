package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex answers searches from canned ids and records indexed documents
type fakeIndex struct {
	mu         sync.Mutex
	profiles   []search.ProfileDoc
	strains    []search.StrainDoc
	profileIDs []string
	strainIDs  []string
	err        error
}

func (f *fakeIndex) IndexProfile(ctx context.Context, doc search.ProfileDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, doc)
	return nil
}

func (f *fakeIndex) IndexStrain(ctx context.Context, doc search.StrainDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strains = append(f.strains, doc)
	return nil
}

func (f *fakeIndex) DeleteStrain(ctx context.Context, strainID string) error {
	return nil
}

func (f *fakeIndex) SearchProfiles(ctx context.Context, term, excludeUserID string, limit int) ([]string, error) {
	return f.profileIDs, f.err
}

func (f *fakeIndex) SearchStrains(ctx context.Context, term string, limit int) ([]string, error) {
	return f.strainIDs, f.err
}

func (suite *HandlersTestSuite) TestSearchProfilesUsesIndexOrder() {
	t := suite.T()
	index := &fakeIndex{profileIDs: []string{suite.carol.ID, "missing-user", suite.bob.ID}}
	suite.handlers.SetSearchIndex(index)

	w := suite.request(http.MethodGet, "/profiles/search?q=anything", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		Profiles []models.Profile `json:"profiles"`
		Count    int              `json:"count"`
	}
	suite.decode(w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, suite.carol.ID, resp.Profiles[0].UserID)
	assert.Equal(t, suite.bob.ID, resp.Profiles[1].UserID)
}

func (suite *HandlersTestSuite) TestSearchFallsBackToDatabase() {
	t := suite.T()
	suite.handlers.SetSearchIndex(&fakeIndex{err: errors.New("cluster unavailable")})

	w := suite.request(http.MethodGet, "/profiles/search?q=bob", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		Profiles []models.Profile `json:"profiles"`
		Count    int              `json:"count"`
	}
	suite.decode(w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, suite.bob.ID, resp.Profiles[0].UserID)
}

func (suite *HandlersTestSuite) TestDatabaseSearchFoldsNonASCII() {
	t := suite.T()
	emile := suite.createUser("emile@example.com", "Émile Øster")

	for _, term := range []string{"émile", "ÉMILE", "øster"} {
		w := suite.request(http.MethodGet, "/profiles/search?q="+url.QueryEscape(term), suite.alice, nil)
		suite.requireStatus(w, http.StatusOK)

		var resp struct {
			Profiles []models.Profile `json:"profiles"`
			Count    int              `json:"count"`
		}
		suite.decode(w, &resp)
		require.Equal(t, 1, resp.Count, "term %q", term)
		assert.Equal(t, emile.ID, resp.Profiles[0].UserID)
	}
}

func (suite *HandlersTestSuite) TestNewStrainsAndProfilesAreIndexed() {
	t := suite.T()
	index := &fakeIndex{}
	suite.handlers.SetSearchIndex(index)

	strain := suite.addStrain(suite.alice, "White Widow", models.StrainHybrid)
	newcomer := suite.createUserWithoutProfile("new@example.com")
	w := suite.request(http.MethodPost, "/profiles", newcomer, map[string]interface{}{"display_name": "Newbie"})
	suite.requireStatus(w, http.StatusCreated)

	index.mu.Lock()
	defer index.mu.Unlock()
	require.Len(t, index.strains, 1)
	assert.Equal(t, strain.ID, index.strains[0].ID)
	require.Len(t, index.profiles, 1)
	assert.Equal(t, newcomer.ID, index.profiles[0].UserID)
}
