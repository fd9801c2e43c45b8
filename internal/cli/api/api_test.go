package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/puffbuddy/backend/internal/cli/client"
	"github.com/puffbuddy/backend/internal/cli/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   map[string]interface{}
}

// serve points the client at a test server that answers every request with
// status and body, recording what it received
func serve(t *testing.T, status int, body string) *recorded {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &rec.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	viper.Reset()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("api.base_url", srv.URL)
	client.Init()
	return rec
}

func TestLoginReturnsToken(t *testing.T) {
	rec := serve(t, http.StatusOK, `{"token":"tok","user":{"id":"u1","name":"Alice"},"expires_at":"2026-01-01T00:00:00Z"}`)

	result, err := Login("alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/auth/login", rec.path)
	assert.Equal(t, "alice@example.com", rec.body["email"])
	assert.False(t, result.Requires2FA)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, "u1", result.User.ID)
}

func TestLoginRequiringTwoFactor(t *testing.T) {
	serve(t, http.StatusOK, `{"requires_2fa":true,"user_id":"u1"}`)

	result, err := Login("alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.True(t, result.Requires2FA)
	assert.Equal(t, "u1", result.UserID)
	assert.Empty(t, result.Token)
}

func TestErrorEnvelope(t *testing.T) {
	serve(t, http.StatusUnprocessableEntity, `{"error":"VALIDATION_ERROR","message":"cigarettes must be between 1 and 1000","field":"cigarettes"}`)

	_, err := LogPuff(LogPuffRequest{Cigarettes: 0})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, "cigarettes", apiErr.Field)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "cigarettes must be between 1 and 1000")
	assert.False(t, IsUnauthorized(err))
}

func TestNonJSONErrorBody(t *testing.T) {
	serve(t, http.StatusBadGateway, `upstream down`)

	_, err := GetFeed()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UNKNOWN_ERROR", apiErr.Code)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestUnauthorized(t *testing.T) {
	serve(t, http.StatusUnauthorized, `{"error":"UNAUTHORIZED","message":"missing token"}`)

	_, err := Me()
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
}

func TestLogPuffOmitsEmptyFields(t *testing.T) {
	rec := serve(t, http.StatusCreated, `{"puff":{"id":"p1","cigarettes":2,"timestamp":"2026-01-01T00:00:00Z"}}`)

	mood := "chill"
	puff, err := LogPuff(LogPuffRequest{Cigarettes: 2, Mood: &mood})
	require.NoError(t, err)
	assert.Equal(t, "p1", puff.ID)
	assert.Equal(t, map[string]interface{}{"cigarettes": float64(2), "mood": "chill"}, rec.body)
}

func TestGetStats(t *testing.T) {
	serve(t, http.StatusOK, `{"today":{"puffs":1,"cigarettes":2},"week":{"puffs":3,"cigarettes":4},"month":{"puffs":5,"cigarettes":6},"total":{"puffs":7,"cigarettes":8},"streaks":{"current":2,"longest":5}}`)

	stats, err := GetStats()
	require.NoError(t, err)
	assert.Equal(t, Totals{Puffs: 3, Cigarettes: 4}, stats.Week)
	assert.Equal(t, 8, stats.Total.Cigarettes)
	assert.Equal(t, 2, stats.Streaks.Current)
	assert.Equal(t, 5, stats.Streaks.Longest)
}

func TestDeletePuff(t *testing.T) {
	rec := serve(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, DeletePuff("p1"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/v1/puffs/p1", rec.path)
}

func TestFriendRequests(t *testing.T) {
	rec := serve(t, http.StatusCreated, `{"friendship":{"id":"f1","requester_id":"u1","receiver_id":"u2","status":"pending"}}`)

	friendship, err := SendFriendRequest("u2")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/friends/requests", rec.path)
	assert.Equal(t, "u2", rec.body["receiver_id"])
	assert.Equal(t, "pending", friendship.Status)
}

func TestReviewStrain(t *testing.T) {
	rec := serve(t, http.StatusOK, `{"review":{"id":"r1","strain_id":"s1","rating":4},"strain":{"id":"s1","name":"Blue Dream","avg_rating":4.5,"review_count":2}}`)

	review, strain, err := ReviewStrain("s1", 4, "")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/strains/s1/reviews", rec.path)
	assert.NotContains(t, rec.body, "review")
	assert.Equal(t, 4, review.Rating)
	require.NotNil(t, strain.AvgRating)
	assert.InDelta(t, 4.5, *strain.AvgRating, 0.001)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	serve(t, http.StatusOK, `{"success":true,"marked":3}`)

	marked, err := MarkAllNotificationsRead()
	require.NoError(t, err)
	assert.Equal(t, 3, marked)
}

func TestToggleLike(t *testing.T) {
	rec := serve(t, http.StatusOK, `{"liked":true,"likes":7}`)

	result, err := ToggleLike("p1")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/posts/p1/like", rec.path)
	assert.Equal(t, LikeResult{Liked: true, Likes: 7}, *result)
}
