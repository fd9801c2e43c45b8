// Package credentials stores the puffctl session token on disk.
package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/puffbuddy/backend/internal/cli/config"
)

// Credentials is the saved login
type Credentials struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
}

// Load reads credentials from disk; it returns nil when none are saved
func Load() (*Credentials, error) {
	data, err := os.ReadFile(config.GetCredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Save writes credentials readable by the owner only
func Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(config.GetCredentialsPath(), data, 0600)
}

// Delete removes saved credentials; a missing file is not an error
func Delete() error {
	err := os.Remove(config.GetCredentialsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// IsExpired reports whether the token has expired. A zero expiry never expires.
func (c *Credentials) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// IsValid reports whether the credentials can authenticate requests
func (c *Credentials) IsValid() bool {
	return c != nil && c.Token != "" && !c.IsExpired()
}
