package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puffbuddy/backend/internal/models"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockAuthService is a mock implementation of AuthServiceInterface for testing.
// Unset Func fields fall back to simple in-memory behavior keyed by token.
type MockAuthService struct {
	mu sync.Mutex

	Calls []MockCall

	RegisterFunc             func(req RegisterRequest) (*AuthResponse, error)
	LoginFunc                func(req LoginRequest) (*LoginResult, error)
	ValidateTokenFunc        func(tokenString string) (*models.User, error)
	RequestPasswordResetFunc func(email string) (*models.PasswordReset, error)
	ResetPasswordFunc        func(token, newPassword string) error

	// DefaultError is returned by methods without an override
	DefaultError error

	// Tokens maps bearer tokens to the users they authenticate
	Tokens map[string]*models.User
}

// NewMockAuthService creates a new mock auth service with sensible defaults
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{
		Calls:  make([]MockCall, 0),
		Tokens: make(map[string]*models.User),
	}
}

func (m *MockAuthService) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// GetCallsForMethod returns calls for a specific method
func (m *MockAuthService) GetCallsForMethod(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []MockCall
	for _, call := range m.Calls {
		if call.Method == method {
			result = append(result, call)
		}
	}
	return result
}

// AddToken registers a token that ValidateToken resolves to user
func (m *MockAuthService) AddToken(token string, user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens[token] = user
}

func (m *MockAuthService) issue(user *models.User) *AuthResponse {
	token := "mock_token_" + user.ID
	m.AddToken(token, user)
	return &AuthResponse{Token: token, User: *user, ExpiresAt: time.Now().Add(TokenTTL)}
}

func (m *MockAuthService) Register(req RegisterRequest) (*AuthResponse, error) {
	m.recordCall("Register", req)
	if m.RegisterFunc != nil {
		return m.RegisterFunc(req)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	email := req.Email
	return m.issue(&models.User{ID: uuid.NewString(), Email: &email, Name: req.Name}), nil
}

func (m *MockAuthService) Login(req LoginRequest) (*LoginResult, error) {
	m.recordCall("Login", req)
	if m.LoginFunc != nil {
		return m.LoginFunc(req)
	}
	return nil, ErrInvalidCredentials
}

func (m *MockAuthService) LoginAnonymous() (*AuthResponse, error) {
	m.recordCall("LoginAnonymous")
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	return m.issue(&models.User{ID: uuid.NewString(), IsAnonymous: true}), nil
}

func (m *MockAuthService) ValidateToken(tokenString string) (*models.User, error) {
	m.recordCall("ValidateToken", tokenString)
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(tokenString)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Tokens[tokenString]; ok {
		return user, nil
	}
	return nil, ErrInvalidToken
}

func (m *MockAuthService) GetUser(userID string) (*models.User, error) {
	m.recordCall("GetUser", userID)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Tokens {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockAuthService) RequestPasswordReset(email string) (*models.PasswordReset, error) {
	m.recordCall("RequestPasswordReset", email)
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(email)
	}
	return nil, m.DefaultError
}

func (m *MockAuthService) ResetPassword(token, newPassword string) error {
	m.recordCall("ResetPassword", token, newPassword)
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(token, newPassword)
	}
	return m.DefaultError
}

func (m *MockAuthService) TwoFactorStatus(userID string) (*TwoFactorStatus, error) {
	m.recordCall("TwoFactorStatus", userID)
	return &TwoFactorStatus{}, m.DefaultError
}

func (m *MockAuthService) EnableTwoFactor(userID, password string) (*TwoFactorSetup, error) {
	m.recordCall("EnableTwoFactor", userID)
	return nil, Err2FANotInitiated
}

func (m *MockAuthService) VerifyTwoFactor(userID, code string) error {
	m.recordCall("VerifyTwoFactor", userID, code)
	return ErrInvalidCode
}

func (m *MockAuthService) DisableTwoFactor(userID, code, password string) error {
	m.recordCall("DisableTwoFactor", userID, code)
	return Err2FANotEnabled
}

func (m *MockAuthService) VerifyTwoFactorLogin(userID, code string) (*AuthResponse, error) {
	m.recordCall("VerifyTwoFactorLogin", userID, code)
	return nil, Err2FANotEnabled
}

func (m *MockAuthService) RegenerateBackupCodes(userID, code string) ([]string, error) {
	m.recordCall("RegenerateBackupCodes", userID, code)
	return nil, Err2FANotEnabled
}

func (m *MockAuthService) GoogleEnabled() bool { return false }

func (m *MockAuthService) GetGoogleOAuthURL(state string) (string, error) {
	m.recordCall("GetGoogleOAuthURL", state)
	return "", ErrOAuthDisabled
}

func (m *MockAuthService) HandleGoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	m.recordCall("HandleGoogleCallback", code)
	return nil, ErrOAuthDisabled
}

// Ensure MockAuthService implements AuthServiceInterface
var _ AuthServiceInterface = (*MockAuthService)(nil)
