package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/puffbuddy/backend/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	providerGoogle     = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthClientTimeout = 10 * time.Second
)

// OAuthUserInfo represents user info from OAuth providers
type OAuthUserInfo struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
}

// GoogleUserInfo represents Google OAuth user response
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleEnabled reports whether Google sign-in is configured
func (s *Service) GoogleEnabled() bool {
	return s.googleConfig != nil
}

// GetGoogleOAuthURL returns Google OAuth authorization URL
func (s *Service) GetGoogleOAuthURL(state string) (string, error) {
	if s.googleConfig == nil {
		return "", ErrOAuthDisabled
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// HandleGoogleCallback exchanges an authorization code and signs the user in
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*AuthResponse, error) {
	if s.googleConfig == nil {
		return nil, ErrOAuthDisabled
	}
	userInfo, err := s.getGoogleUserInfo(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google user info: %w", err)
	}
	return s.findOrCreateUserFromOAuth(providerGoogle, userInfo)
}

// findOrCreateUserFromOAuth links by provider account, then by email, and
// creates a new user only when neither matches
func (s *Service) findOrCreateUserFromOAuth(provider string, info *OAuthUserInfo) (*AuthResponse, error) {
	var linked models.OAuthAccount
	err := s.db.Where("provider = ? AND provider_user_id = ?", provider, info.ID).First(&linked).Error
	if err == nil {
		user, err := s.GetUser(linked.UserID)
		if err != nil {
			return nil, err
		}
		return s.generateAuthResponse(user)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error checking OAuth: %w", err)
	}

	var user models.User
	email := normalizeEmail(info.Email)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		lookupErr := tx.Where("LOWER(email) = ?", email).First(&user).Error
		switch {
		case lookupErr == nil:
			logger.Log.Info("Linking OAuth account to existing user",
				zap.String("provider", provider), logger.WithUserID(user.ID))
		case errors.Is(lookupErr, gorm.ErrRecordNotFound):
			user = models.User{
				Email:         &email,
				Name:          info.Name,
				EmailVerified: info.EmailVerified,
			}
			if provider == providerGoogle {
				user.GoogleID = &info.ID
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			metrics.App().SignUps.WithLabelValues(provider).Inc()
		default:
			return fmt.Errorf("database error finding user: %w", lookupErr)
		}

		return tx.Create(&models.OAuthAccount{
			UserID:         user.ID,
			Provider:       provider,
			ProviderUserID: info.ID,
			Email:          email,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.generateAuthResponse(&user)
}

// getGoogleUserInfo fetches user info from Google OAuth
func (s *Service) getGoogleUserInfo(ctx context.Context, code string) (*OAuthUserInfo, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, telemetry.NewInstrumentedHTTPClient(oauthClientTimeout))

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	resp, err := s.googleConfig.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var googleUser GoogleUserInfo
	if err := json.Unmarshal(body, &googleUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if googleUser.ID == "" || googleUser.Email == "" {
		return nil, errors.New("google account has no id or email")
	}

	return &OAuthUserInfo{
		ID:            googleUser.ID,
		Email:         googleUser.Email,
		EmailVerified: googleUser.VerifiedEmail,
		Name:          googleUser.Name,
	}, nil
}
