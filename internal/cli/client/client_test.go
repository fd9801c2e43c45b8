package client

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/puffbuddy/backend/internal/cli/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientSingleton(t *testing.T) {
	httpClient = nil
	assert.Same(t, GetClient(), GetClient())
}

func TestAuthTokenSentAndCleared(t *testing.T) {
	var authHeaders []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	viper.Reset()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("api.base_url", srv.URL)
	httpClient = nil

	SetAuthToken("tok")
	_, err := GetClient().R().Get("/health")
	require.NoError(t, err)

	ClearAuthToken()
	_, err = GetClient().R().Get("/health")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok", ""}, authHeaders)
}
