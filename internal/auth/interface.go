package auth

import (
	"context"

	"github.com/puffbuddy/backend/internal/models"
)

// TokenValidator resolves a bearer token to its user
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.User, error)
}

// AuthServiceInterface defines the contract for authentication operations.
// Handlers depend on it so tests can swap in MockAuthService.
type AuthServiceInterface interface {
	TokenValidator

	// Registration and Login
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*LoginResult, error)
	LoginAnonymous() (*AuthResponse, error)

	// User lookup
	GetUser(userID string) (*models.User, error)

	// Password reset
	RequestPasswordReset(email string) (*models.PasswordReset, error)
	ResetPassword(token, newPassword string) error

	// Two-factor
	TwoFactorStatus(userID string) (*TwoFactorStatus, error)
	EnableTwoFactor(userID, password string) (*TwoFactorSetup, error)
	VerifyTwoFactor(userID, code string) error
	DisableTwoFactor(userID, code, password string) error
	VerifyTwoFactorLogin(userID, code string) (*AuthResponse, error)
	RegenerateBackupCodes(userID, code string) ([]string, error)

	// OAuth
	GoogleEnabled() bool
	GetGoogleOAuthURL(state string) (string, error)
	HandleGoogleCallback(ctx context.Context, code string) (*AuthResponse, error)
}

// Ensure Service implements AuthServiceInterface
var _ AuthServiceInterface = (*Service)(nil)
