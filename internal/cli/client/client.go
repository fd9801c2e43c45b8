// Package client holds the shared resty client used by puffctl.
package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/puffbuddy/backend/internal/cli/config"
	"github.com/puffbuddy/backend/internal/cli/logger"
)

const userAgent = "puffctl/0.1.0"

var httpClient *resty.Client

// Init creates the HTTP client from configuration
func Init() {
	httpClient = resty.New()

	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient.SetBaseURL(config.GetString("api.base_url"))
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", userAgent)
	httpClient.SetHeader("Accept", "application/json")

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})
}

// GetClient returns the HTTP client, creating it on first use
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sends token as a bearer token on every request
func SetAuthToken(token string) {
	GetClient().SetAuthToken(token)
}

// ClearAuthToken drops the bearer token
func ClearAuthToken() {
	Init()
}
