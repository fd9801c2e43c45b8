package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/client"
	"github.com/puffbuddy/backend/internal/cli/config"
	"github.com/puffbuddy/backend/internal/cli/credentials"
	"github.com/puffbuddy/backend/internal/cli/output"
	"github.com/puffbuddy/backend/internal/cli/prompter"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mux   *http.ServeMux
	out   *bytes.Buffer
	calls []string
}

// newFakeAPI points the CLI at a test server and captures output
func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux(), out: &bytes.Buffer{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	viper.Reset()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("api.base_url", srv.URL)
	config.Set("output.format", "text")
	client.Init()

	color.NoColor = true
	output.Out = f.out
	prompter.In = strings.NewReader("")
	t.Cleanup(func() {
		output.Out = os.Stdout
	})
	return f
}

func (f *fakeAPI) handle(pattern string, status int, body string) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func loggedIn(t *testing.T) {
	t.Helper()
	require.NoError(t, credentials.Save(&credentials.Credentials{
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
		UserID:    "me",
		Email:     "me@example.com",
	}))
}

func TestCommandsRequireLogin(t *testing.T) {
	f := newFakeAPI(t)

	assert.ErrorIs(t, NewPuffService().List(0), ErrNotLoggedIn)
	assert.ErrorIs(t, NewSocialService().Feed(0), ErrNotLoggedIn)
	assert.ErrorIs(t, NewNotificationService().List(false, 0), ErrNotLoggedIn)
	assert.Empty(t, f.calls)
}

func TestLoginWithTwoFactor(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("POST /api/v1/auth/login", http.StatusOK, `{"requires_2fa":true,"user_id":"u1"}`)
	f.handle("POST /api/v1/auth/2fa/verify-login", http.StatusOK,
		`{"token":"tok2","user":{"id":"u1","email":"alice@example.com","name":"Alice"},"expires_at":"2099-01-01T00:00:00Z"}`)
	prompter.In = strings.NewReader("alice@example.com\nhunter2hunter2\n123456\n")

	require.NoError(t, NewAuthService().Login())

	creds, err := credentials.Load()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "tok2", creds.Token)
	assert.Equal(t, "u1", creds.UserID)
	assert.Equal(t, "alice@example.com", creds.Email)
	assert.Contains(t, f.out.String(), "Logged in as alice@example.com")
}

func TestLoginFailure(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("POST /api/v1/auth/login", http.StatusUnauthorized, `{"error":"UNAUTHORIZED","message":"invalid credentials"}`)
	prompter.In = strings.NewReader("alice@example.com\nwrong\n")

	err := NewAuthService().Login()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	creds, _ := credentials.Load()
	assert.Nil(t, creds)
}

func TestLogout(t *testing.T) {
	f := newFakeAPI(t)
	loggedIn(t)

	require.NoError(t, NewAuthService().Logout())
	creds, _ := credentials.Load()
	assert.Nil(t, creds)
	assert.Contains(t, f.out.String(), "Logged out.")
}

func TestWhoAmIExpiredSession(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/v1/auth/me", http.StatusUnauthorized, `{"error":"UNAUTHORIZED","message":"token expired"}`)
	loggedIn(t)

	err := NewAuthService().WhoAmI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "puffctl auth login")
}

func TestLogPuffValidatesBeforeCalling(t *testing.T) {
	f := newFakeAPI(t)
	loggedIn(t)

	assert.Error(t, NewPuffService().Log(api.LogPuffRequest{Cigarettes: 0}))
	assert.Error(t, NewPuffService().Log(api.LogPuffRequest{Cigarettes: 1001}))
	assert.Empty(t, f.calls)
}

func TestPuffListJSON(t *testing.T) {
	f := newFakeAPI(t)
	var query string
	f.mux.HandleFunc("GET /api/v1/puffs", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"puffs":[{"id":"p1","cigarettes":1,"timestamp":"2026-01-02T00:00:00Z"}],"count":1}`))
	})
	loggedIn(t)
	config.Set("output.format", "json")

	require.NoError(t, NewPuffService().List(1))
	assert.Equal(t, "limit=1", query)

	var puffs []api.Puff
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &puffs))
	require.Len(t, puffs, 1)
	assert.Equal(t, "p1", puffs[0].ID)
}

func TestStats(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/v1/puffs/stats", http.StatusOK,
		`{"today":{"puffs":1,"cigarettes":1},"week":{"puffs":2,"cigarettes":3},"month":{"puffs":2,"cigarettes":3},"total":{"puffs":9,"cigarettes":12},"streaks":{"current":1,"longest":4}}`)
	loggedIn(t)

	require.NoError(t, NewPuffService().Stats())
	assert.Contains(t, f.out.String(), "This week: 2 puffs, 3 cigarettes")
	assert.Contains(t, f.out.String(), "Longest streak: 4 days")
	assert.Contains(t, f.out.String(), "Current streak: 1 day\n")
}

func TestDeletePuffCancelled(t *testing.T) {
	f := newFakeAPI(t)
	loggedIn(t)
	prompter.In = strings.NewReader("n\n")

	require.NoError(t, NewPuffService().Delete("p1", false))
	assert.Empty(t, f.calls)
	assert.Contains(t, f.out.String(), "Cancelled.")
}

func TestDeletePuffNotFound(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("DELETE /api/v1/puffs/p1", http.StatusNotFound, `{"error":"NOT_FOUND","message":"puff not found"}`)
	loggedIn(t)

	err := NewPuffService().Delete("p1", true)
	require.Error(t, err)
	assert.Equal(t, "puff p1 not found", err.Error())
}

func TestLeaderboardMarksCaller(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/v1/puffs/leaderboard", http.StatusOK,
		`{"leaderboard":[{"user_id":"friend","display_name":"Bud","puffs":5,"cigarettes":7},{"user_id":"me","display_name":"Me","puffs":2,"cigarettes":2}],"count":2}`)
	loggedIn(t)
	config.Set("output.format", "table")

	require.NoError(t, NewPuffService().Leaderboard())
	lines := strings.Split(strings.TrimSpace(f.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "RANK")
	assert.Contains(t, lines[1], "Bud")
	assert.Contains(t, lines[2], "Me (you)")
}

func TestAddFriendRejectsSelf(t *testing.T) {
	f := newFakeAPI(t)
	loggedIn(t)

	assert.Error(t, NewSocialService().AddFriend("me"))
	assert.Empty(t, f.calls)
}

func TestFeedText(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/v1/feed", http.StatusOK,
		`{"posts":[{"id":"p1","user_id":"u2","content":"first\nsesh","like_count":3,"is_liked":true,"profile":{"user_id":"u2","display_name":"Bud"}}],"count":1}`)
	loggedIn(t)

	require.NoError(t, NewSocialService().Feed(0))
	assert.Contains(t, f.out.String(), "Bud")
	assert.Contains(t, f.out.String(), "first sesh")
	assert.Contains(t, f.out.String(), "3♥")
}

func TestStrainValidation(t *testing.T) {
	f := newFakeAPI(t)
	loggedIn(t)
	s := NewStrainService()

	assert.Error(t, s.Add(api.AddStrainRequest{Name: "  ", Type: "hybrid"}))
	assert.Error(t, s.Add(api.AddStrainRequest{Name: "Blue Dream", Type: "ruderalis"}))
	assert.Error(t, s.Review("s1", 0, ""))
	assert.Error(t, s.Review("s1", 6, ""))
	assert.Empty(t, f.calls)
}

func TestStrainListFiltersByType(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/v1/strains", http.StatusOK,
		`{"strains":[{"id":"s1","name":"Blue Dream","type":"hybrid"},{"id":"s2","name":"Northern Lights","type":"indica","avg_rating":4.3,"review_count":4}],"count":2}`)
	loggedIn(t)

	require.NoError(t, NewStrainService().List("Indica", 0))
	assert.NotContains(t, f.out.String(), "Blue Dream")
	assert.Contains(t, f.out.String(), "Northern Lights")
	assert.Contains(t, f.out.String(), "4.3 (4 reviews)")
}

func TestReadAllNotifications(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("POST /api/v1/notifications/read-all", http.StatusOK, `{"success":true,"marked":1}`)
	loggedIn(t)

	require.NoError(t, NewNotificationService().ReadAll(true))
	assert.Contains(t, f.out.String(), "Marked 1 notification as read.")
}

func TestListUnreadNotifications(t *testing.T) {
	f := newFakeAPI(t)
	f.handle("GET /api/v1/notifications", http.StatusOK,
		`{"notifications":[{"id":"n1","type":"like","message":"liked your post","read":true},{"id":"n2","type":"friend_request","message":"wants to be friends","read":false}],"count":2}`)
	loggedIn(t)

	require.NoError(t, NewNotificationService().List(true, 0))
	assert.NotContains(t, f.out.String(), "liked your post")
	assert.Contains(t, f.out.String(), "wants to be friends")
}
