package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrOAuthDisabled      = errors.New("oauth provider not configured")
)

// TokenTTL is the lifetime of issued JWTs
const TokenTTL = 24 * time.Hour

// ResetTokenTTL is the lifetime of password reset tokens
const ResetTokenTTL = time.Hour

// MinPasswordLength applies to registration and password reset
const MinPasswordLength = 8

// Service handles all authentication operations
type Service struct {
	db           *gorm.DB
	jwtSecret    []byte
	googleConfig *oauth2.Config
	now          func() time.Time
}

// NewService creates a new authentication service.
// googleConfig may be nil when Google sign-in is not configured.
func NewService(db *gorm.DB, jwtSecret []byte, googleConfig *oauth2.Config) *Service {
	return &Service{
		db:           db,
		jwtSecret:    jwtSecret,
		googleConfig: googleConfig,
		now:          time.Now,
	}
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// LoginResult is either a token or a pending second factor
type LoginResult struct {
	*AuthResponse
	Requires2FA bool   `json:"requires_2fa,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// RegisterRequest represents native registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"max=80"`
}

// LoginRequest represents native login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user with email/password
func (s *Service) Register(req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if len(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	var existing models.User
	err := s.db.Where("LOWER(email) = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        &email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: &hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.App().SignUps.WithLabelValues("password").Inc()
	logger.Log.Info("User registered", logger.WithUserID(user.ID))

	return s.generateAuthResponse(&user)
}

// Login authenticates with email/password. When the account has two-factor
// enabled no token is issued and the result asks for a code instead.
func (s *Service) Login(req LoginRequest) (*LoginResult, error) {
	var user models.User
	err := s.db.Where("LOWER(email) = ?", normalizeEmail(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		return &LoginResult{Requires2FA: true, UserID: user.ID}, nil
	}

	resp, err := s.generateAuthResponse(&user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AuthResponse: resp}, nil
}

// LoginAnonymous creates a throwaway account with no email
func (s *Service) LoginAnonymous() (*AuthResponse, error) {
	user := models.User{IsAnonymous: true}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create anonymous user: %w", err)
	}
	metrics.App().SignUps.WithLabelValues("anonymous").Inc()
	return s.generateAuthResponse(&user)
}

// GetUser loads a user by ID
func (s *Service) GetUser(userID string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// GenerateTokenForUser creates a token for a user that already passed
// every authentication step
func (s *Service) GenerateTokenForUser(user *models.User) (*AuthResponse, error) {
	return s.generateAuthResponse(user)
}

// generateAuthResponse creates JWT token and auth response
func (s *Service) generateAuthResponse(user *models.User) (*AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(TokenTTL)

	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   email,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		User:      *user,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT token and returns the user it was issued to
func (s *Service) ValidateToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}

	// Fetch fresh user data so deleted users lose access immediately
	return s.GetUser(userID)
}

// RequestPasswordReset stores a reset token for a known email. Unknown
// emails and accounts without a password produce (nil, nil).
func (s *Service) RequestPasswordReset(email string) (*models.PasswordReset, error) {
	var user models.User
	err := s.db.Where("LOWER(email) = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.PasswordHash == nil {
		return nil, nil
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""),
		ExpiresAt: s.now().UTC().Add(ResetTokenTTL),
	}
	if err := s.db.Create(&reset).Error; err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	logger.Log.Info("Password reset requested", logger.WithUserID(user.ID))
	return &reset, nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *Service) ResetPassword(token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		reset, err := claimResetToken(tx, token, s.now().UTC())
		if err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		logger.Log.Info("Password reset completed", zap.String("user_id", reset.UserID))
		return nil
	})
}

// claimResetToken marks an unused, unexpired token used. The flag flips in
// a single conditional update so only one caller can claim a token.
func claimResetToken(tx *gorm.DB, token string, now time.Time) (*models.PasswordReset, error) {
	res := tx.Model(&models.PasswordReset{}).
		Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
		Update("used", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark token used: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidResetToken
	}

	var reset models.PasswordReset
	if err := tx.Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &reset, nil
}

// VerifyPassword checks a password against the user's stored hash
func (s *Service) VerifyPassword(user *models.User, password string) bool {
	if user.PasswordHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) == nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
