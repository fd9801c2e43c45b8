// Package service implements the puffctl commands on top of the API client.
package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/client"
	"github.com/puffbuddy/backend/internal/cli/credentials"
	"github.com/puffbuddy/backend/internal/cli/logger"
)

// ErrNotLoggedIn is returned when a command needs a saved session
var ErrNotLoggedIn = errors.New("not logged in, run 'puffctl auth login' first")

const timeLayout = "2006-01-02 15:04"

// authenticate loads the saved session and attaches its token to the client
func authenticate() (*credentials.Credentials, error) {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "err", err)
		return nil, err
	}
	if !creds.IsValid() {
		return nil, ErrNotLoggedIn
	}
	client.SetAuthToken(creds.Token)
	return creds, nil
}

// wrap adds context to API errors and turns a rejected token into a login hint
func wrap(action string, err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%s: session expired, run 'puffctl auth login' again", action)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func displayName(p *api.Profile, fallback string) string {
	if p == nil || p.DisplayName == "" {
		return fallback
	}
	return p.DisplayName
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
