package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/puffbuddy/backend/internal/auth"
	"github.com/puffbuddy/backend/internal/email"
	apierrors "github.com/puffbuddy/backend/internal/errors"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/util"
	"go.uber.org/zap"
)

const oauthStateCookie = "puffbuddy_oauth_state"

// AuthHandlers serves the unauthenticated sign-in surface and account security
type AuthHandlers struct {
	authService auth.AuthServiceInterface
	email       email.Sender
}

// NewAuthHandlers creates auth handlers. sender may be nil when email is not configured.
func NewAuthHandlers(authService auth.AuthServiceInterface, sender email.Sender) *AuthHandlers {
	return &AuthHandlers{authService: authService, email: sender}
}

// Register creates a password account
// POST /api/v1/auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			util.RespondConflict(c, "User already exists")
			return
		}
		util.RespondInternalError(c, "Failed to register", err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with email and password
// POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	result, err := h.authService.Login(req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			util.RespondUnauthorized(c, "invalid credentials")
			return
		}
		util.RespondInternalError(c, "Failed to log in", err)
		return
	}

	if result.Requires2FA {
		c.JSON(http.StatusOK, gin.H{
			"requires_2fa": true,
			"user_id":      result.UserID,
		})
		return
	}
	c.JSON(http.StatusOK, result.AuthResponse)
}

// LoginAnonymous creates a guest account
// POST /api/v1/auth/anonymous
func (h *AuthHandlers) LoginAnonymous(c *gin.Context) {
	resp, err := h.authService.LoginAnonymous()
	if err != nil {
		util.RespondInternalError(c, "Failed to create guest account", err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequestPasswordReset always succeeds so callers cannot probe for accounts
// POST /api/v1/auth/password-reset/request
func (h *AuthHandlers) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	reset, err := h.authService.RequestPasswordReset(req.Email)
	if err != nil {
		logger.ErrorWithFields("Failed to create password reset", err)
	}
	if reset != nil && h.email != nil {
		if err := h.email.SendPasswordResetEmail(c.Request.Context(), req.Email, reset.Token); err != nil {
			logger.ErrorWithFields("Failed to send password reset email", err, logger.WithUserID(reset.UserID))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetPassword consumes a reset token
// POST /api/v1/auth/password-reset/confirm
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			util.RespondBadRequest(c, "Invalid or expired reset token")
			return
		}
		util.RespondInternalError(c, "Failed to reset password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Get2FAStatus returns the current 2FA status for the authenticated user
// GET /api/v1/auth/2fa/status
func (h *AuthHandlers) Get2FAStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	status, err := h.authService.TwoFactorStatus(userID)
	if err != nil {
		respondTwoFactorError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Enable2FA starts two-factor setup
// POST /api/v1/auth/2fa/enable
func (h *AuthHandlers) Enable2FA(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	setup, err := h.authService.EnableTwoFactor(userID, req.Password)
	if err != nil {
		respondTwoFactorError(c, err)
		return
	}
	c.JSON(http.StatusOK, setup)
}

// Verify2FA activates two-factor with a code from the authenticator app
// POST /api/v1/auth/2fa/verify
func (h *AuthHandlers) Verify2FA(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	if err := h.authService.VerifyTwoFactor(userID, req.Code); err != nil {
		respondTwoFactorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true})
}

// Disable2FA turns two-factor off
// POST /api/v1/auth/2fa/disable
func (h *AuthHandlers) Disable2FA(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}
	if req.Code == "" && req.Password == "" {
		util.RespondValidationError(c, "code", "A code or password is required")
		return
	}

	if err := h.authService.DisableTwoFactor(userID, req.Code, req.Password); err != nil {
		respondTwoFactorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": false})
}

// Verify2FALogin completes a login that required a second factor
// POST /api/v1/auth/2fa/verify-login
func (h *AuthHandlers) Verify2FALogin(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	resp, err := h.authService.VerifyTwoFactorLogin(req.UserID, req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidCode) || errors.Is(err, auth.Err2FANotEnabled) {
			util.RespondUnauthorized(c, "Invalid verification code")
			return
		}
		util.RespondInternalError(c, "Failed to verify code", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegenerateBackupCodes issues a fresh set of backup codes
// POST /api/v1/auth/2fa/backup-codes
func (h *AuthHandlers) RegenerateBackupCodes(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBindError(c, err)
		return
	}

	codes, err := h.authService.RegenerateBackupCodes(userID, req.Code)
	if err != nil {
		respondTwoFactorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backup_codes": codes})
}

func respondTwoFactorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		util.RespondNotFound(c, "User")
	case errors.Is(err, auth.Err2FAAlreadyEnabled):
		util.RespondConflict(c, "2FA is already enabled")
	case errors.Is(err, auth.Err2FANotEnabled):
		util.RespondBadRequest(c, "2FA is not enabled")
	case errors.Is(err, auth.Err2FANotInitiated):
		util.RespondBadRequest(c, "2FA setup not initiated")
	case errors.Is(err, auth.ErrInvalidPassword):
		util.RespondUnauthorized(c, "Invalid password")
	case errors.Is(err, auth.ErrInvalidCode):
		util.RespondWithAPIError(c, apierrors.New(apierrors.ErrTwoFactor, "Invalid verification code"))
	default:
		util.RespondInternalError(c, "Two-factor operation failed", err)
	}
}

// GoogleOAuth redirects to Google's consent screen
// GET /api/v1/auth/google
func (h *AuthHandlers) GoogleOAuth(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.authService.GetGoogleOAuthURL(state)
	if err != nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("Google sign-in"))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback exchanges the authorization code and returns a token
// GET /api/v1/auth/google/callback
func (h *AuthHandlers) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		util.RespondBadRequest(c, "Invalid OAuth state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	code := c.Query("code")
	if code == "" {
		util.RespondBadRequest(c, "Missing authorization code")
		return
	}

	resp, err := h.authService.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		logger.WarnWithFields("Google sign-in failed", err, zap.String("ip", c.ClientIP()))
		util.RespondUnauthorized(c, "Google sign-in failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}
