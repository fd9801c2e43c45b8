package service

import (
	"fmt"

	"github.com/puffbuddy/backend/internal/cli/api"
	"github.com/puffbuddy/backend/internal/cli/client"
	"github.com/puffbuddy/backend/internal/cli/credentials"
	"github.com/puffbuddy/backend/internal/cli/logger"
	"github.com/puffbuddy/backend/internal/cli/output"
	"github.com/puffbuddy/backend/internal/cli/prompter"
)

// AuthService handles login state
type AuthService struct{}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login prompts for credentials, completes 2FA when the account needs it and
// saves the session
func (s *AuthService) Login() error {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "err", err)
		return err
	}

	if creds.IsValid() {
		output.PrintWarning("Already logged in as %s", creds.Email)
		confirm, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	email, err := prompter.PromptString("Email: ")
	if err != nil {
		return err
	}
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	password, err := prompter.PromptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	client.ClearAuthToken()
	result, err := api.Login(email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	resp := &result.AuthResponse
	if result.Requires2FA {
		code, err := prompter.PromptString("Two-factor code: ")
		if err != nil {
			return err
		}
		if resp, err = api.VerifyLogin(result.UserID, code); err != nil {
			return fmt.Errorf("two-factor verification failed: %w", err)
		}
	}

	creds = &credentials.Credentials{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		UserID:    resp.User.ID,
		Email:     deref(resp.User.Email),
		Name:      resp.User.Name,
	}
	if err := credentials.Save(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	client.SetAuthToken(resp.Token)
	logger.Info("Logged in", "user_id", resp.User.ID)
	output.PrintSuccess("Logged in as %s", displayUser(resp.User))
	return nil
}

// Logout forgets the saved session
func (s *AuthService) Logout() error {
	creds, err := credentials.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		output.PrintInfo("Not logged in.")
		return nil
	}

	if err := credentials.Delete(); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	client.ClearAuthToken()
	output.PrintSuccess("Logged out.")
	return nil
}

// WhoAmI shows the account behind the saved session
func (s *AuthService) WhoAmI() error {
	if _, err := authenticate(); err != nil {
		return err
	}

	user, err := api.Me()
	if err != nil {
		return wrap("failed to get current user", err)
	}

	return output.PrintRecord(user, []output.Field{
		{Label: "ID", Value: user.ID},
		{Label: "Name", Value: user.Name},
		{Label: "Email", Value: deref(user.Email)},
		{Label: "Anonymous", Value: user.IsAnonymous},
		{Label: "2FA", Value: user.TwoFactorEnabled},
	})
}

func displayUser(u api.User) string {
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
