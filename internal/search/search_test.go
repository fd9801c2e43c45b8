package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/puffbuddy/backend/internal/database"
	"github.com/puffbuddy/backend/internal/models"
)

// fakeCluster answers just enough of the Elasticsearch API for the client
type fakeCluster struct {
	mu       sync.Mutex
	requests map[string]string // "METHOD path" -> body
	hits     []map[string]interface{}
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests[r.Method+" "+r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		io.WriteString(w, `{"version":{"number":"9.0.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		hits := make([]map[string]interface{}, 0, len(f.hits))
		for _, src := range f.hits {
			hits = append(hits, map[string]interface{}{"_source": src})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"hits": map[string]interface{}{"hits": hits}})
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"result":"not_found"}`)
	default:
		io.WriteString(w, `{"acknowledged":true,"result":"created"}`)
	}
}

func newFakeClient(t *testing.T, hits ...map[string]interface{}) (*Client, *fakeCluster) {
	cluster := &fakeCluster{requests: map[string]string{}, hits: hits}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	return client, cluster
}

func TestSearchProfiles(t *testing.T) {
	client, cluster := newFakeClient(t,
		map[string]interface{}{"user_id": "u1"},
		map[string]interface{}{"user_id": "u2"},
	)

	ids, err := client.SearchProfiles(context.Background(), "  Chill ", "me", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)

	body := cluster.requests["POST /"+IndexProfiles+"/_search"]
	assert.Contains(t, body, `"*chill*"`)
	assert.Contains(t, body, `"user_id":"me"`)
	assert.Contains(t, body, `"size":20`)
}

func TestSearchStrains(t *testing.T) {
	client, cluster := newFakeClient(t, map[string]interface{}{"id": "s1"})

	ids, err := client.SearchStrains(context.Background(), "kush", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
	assert.Contains(t, cluster.requests["POST /"+IndexStrains+"/_search"], `"size":5`)
}

func TestInitializeIndicesAndDelete(t *testing.T) {
	client, cluster := newFakeClient(t)

	require.NoError(t, client.InitializeIndices(context.Background()))
	assert.Contains(t, cluster.requests["PUT /"+IndexProfiles], "lowercase_normalizer")
	assert.Contains(t, cluster.requests["PUT /"+IndexStrains], `"name"`)

	// Missing documents are not errors
	assert.NoError(t, client.DeleteStrain(context.Background(), "gone"))
}

func TestWildcardPattern(t *testing.T) {
	assert.Equal(t, "*og kush*", wildcardPattern(" OG Kush "))
	assert.Equal(t, `*a\*b\?*`, wildcardPattern("a*b?"))
}

type recordingIndex struct {
	profiles []ProfileDoc
	strains  []StrainDoc
}

func (r *recordingIndex) IndexProfile(ctx context.Context, doc ProfileDoc) error {
	r.profiles = append(r.profiles, doc)
	return nil
}

func (r *recordingIndex) IndexStrain(ctx context.Context, doc StrainDoc) error {
	r.strains = append(r.strains, doc)
	return nil
}

func (r *recordingIndex) DeleteStrain(ctx context.Context, strainID string) error { return nil }

func (r *recordingIndex) SearchProfiles(ctx context.Context, term, excludeUserID string, limit int) ([]string, error) {
	return nil, nil
}

func (r *recordingIndex) SearchStrains(ctx context.Context, term string, limit int) ([]string, error) {
	return nil, nil
}

func TestBackfill(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)

	bio := "likes hikes"
	require.NoError(t, db.Create(&models.Profile{UserID: "u1", DisplayName: "One", Bio: &bio}).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: "u2", DisplayName: "Two"}).Error)
	require.NoError(t, db.Create(&models.Strain{Name: "Blue Dream", Type: models.StrainHybrid}).Error)

	idx := &recordingIndex{}
	stats, err := Backfill(context.Background(), db, idx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Profiles)
	assert.Equal(t, 1, stats.Strains)

	// Batches walk the random primary keys, so match documents by user
	bios := make(map[string]string, len(idx.profiles))
	for _, doc := range idx.profiles {
		bios[doc.UserID] = doc.Bio
	}
	assert.Equal(t, map[string]string{"u1": "likes hikes", "u2": ""}, bios)
	require.Len(t, idx.strains, 1)
	assert.Equal(t, "Blue Dream", idx.strains[0].Name)
}
