package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp/totp"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/models"
	"gorm.io/gorm"
)

const (
	// Number of backup codes to generate
	backupCodeCount = 10
	// Backup code length (characters)
	backupCodeLength = 8
	// OTP issuer name shown in authenticator apps
	otpIssuer = "PuffBuddy"
)

var (
	Err2FAAlreadyEnabled = errors.New("2FA is already enabled")
	Err2FANotEnabled     = errors.New("2FA is not enabled")
	Err2FANotInitiated   = errors.New("2FA setup not initiated")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrInvalidPassword   = errors.New("invalid password")
)

// TwoFactorStatus describes a user's 2FA state
type TwoFactorStatus struct {
	Enabled              bool `json:"enabled"`
	BackupCodesRemaining int  `json:"backup_codes_remaining"`
}

// TwoFactorSetup contains the OTP setup data shown once to the user
type TwoFactorSetup struct {
	Secret      string   `json:"secret"`       // Base32-encoded secret for manual entry
	QRCodeURL   string   `json:"qr_code_url"`  // otpauth:// URL for QR code
	BackupCodes []string `json:"backup_codes"` // One-time backup codes
}

// TwoFactorStatus returns the 2FA status of a user
func (s *Service) TwoFactorStatus(userID string) (*TwoFactorStatus, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	status := &TwoFactorStatus{Enabled: user.TwoFactorEnabled}
	if user.TwoFactorEnabled {
		status.BackupCodesRemaining = len(user.BackupCodes)
	}
	return status, nil
}

// EnableTwoFactor starts 2FA setup. The secret is stored but stays inactive
// until VerifyTwoFactor confirms a code from the authenticator app.
func (s *Service) EnableTwoFactor(userID, password string) (*TwoFactorSetup, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, Err2FAAlreadyEnabled
	}
	// Anonymous and OAuth-only accounts have no password to confirm
	if user.PasswordHash != nil && !s.VerifyPassword(user, password) {
		return nil, ErrInvalidPassword
	}

	account := user.ID
	if user.Email != nil {
		account = *user.Email
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      otpIssuer,
		AccountName: account,
		SecretSize:  32,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate 2FA secret: %w", err)
	}

	backupCodes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, err
	}

	secret := key.Secret()
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"two_factor_secret": secret,
		"backup_codes":      models.StringList(hashBackupCodes(backupCodes)),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to save 2FA setup: %w", err)
	}

	return &TwoFactorSetup{
		Secret:      secret,
		QRCodeURL:   key.URL(),
		BackupCodes: backupCodes,
	}, nil
}

// VerifyTwoFactor completes 2FA setup by checking a TOTP code
func (s *Service) VerifyTwoFactor(userID, code string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == nil || *user.TwoFactorSecret == "" {
		return Err2FANotInitiated
	}
	if !totp.Validate(strings.TrimSpace(code), *user.TwoFactorSecret) {
		return ErrInvalidCode
	}
	if err := s.db.Model(user).Update("two_factor_enabled", true).Error; err != nil {
		return fmt.Errorf("failed to enable 2FA: %w", err)
	}
	logger.Log.Info("2FA enabled", logger.WithUserID(user.ID))
	return nil
}

// DisableTwoFactor turns 2FA off after a TOTP code, a backup code or the
// account password confirms it
func (s *Service) DisableTwoFactor(userID, code, password string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return Err2FANotEnabled
	}

	verified := false
	if code != "" {
		verified, err = s.checkSecondFactor(user, code)
		if err != nil {
			return err
		}
	}
	if !verified && password != "" {
		verified = s.VerifyPassword(user, password)
	}
	if !verified {
		return ErrInvalidCode
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"two_factor_enabled": false,
		"two_factor_secret":  nil,
		"backup_codes":       models.StringList{},
	}).Error; err != nil {
		return fmt.Errorf("failed to disable 2FA: %w", err)
	}
	logger.Log.Info("2FA disabled", logger.WithUserID(user.ID))
	return nil
}

// VerifyTwoFactorLogin completes a login that Login answered with requires_2fa
func (s *Service) VerifyTwoFactorLogin(userID, code string) (*AuthResponse, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		return nil, Err2FANotEnabled
	}
	ok, err := s.checkSecondFactor(user, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}
	return s.generateAuthResponse(user)
}

// RegenerateBackupCodes replaces the backup codes after a valid TOTP code
func (s *Service) RegenerateBackupCodes(userID, code string) ([]string, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		return nil, Err2FANotEnabled
	}
	if !totp.Validate(strings.TrimSpace(code), *user.TwoFactorSecret) {
		return nil, ErrInvalidCode
	}
	codes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("backup_codes", models.StringList(hashBackupCodes(codes))).Error; err != nil {
		return nil, fmt.Errorf("failed to save backup codes: %w", err)
	}
	return codes, nil
}

// checkSecondFactor accepts a TOTP code or consumes a matching backup code
func (s *Service) checkSecondFactor(user *models.User, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if user.TwoFactorSecret != nil && totp.Validate(code, *user.TwoFactorSecret) {
		return true, nil
	}
	return s.consumeBackupCode(user, code)
}

// consumeBackupCode removes the matching backup code so it cannot be reused
func (s *Service) consumeBackupCode(user *models.User, code string) (bool, error) {
	provided := hashBackupCode(code)
	for i, stored := range user.BackupCodes {
		if stored != provided {
			continue
		}
		remaining := make(models.StringList, 0, len(user.BackupCodes)-1)
		remaining = append(remaining, user.BackupCodes[:i]...)
		remaining = append(remaining, user.BackupCodes[i+1:]...)
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.Model(user).Update("backup_codes", remaining).Error
		})
		if err != nil {
			return false, fmt.Errorf("failed to consume backup code: %w", err)
		}
		user.BackupCodes = remaining
		return true, nil
	}
	return false, nil
}

// generateBackupCodes generates a set of random XXXX-XXXX codes
func generateBackupCodes(count int) ([]string, error) {
	codes := make([]string, count)
	for i := range codes {
		buf := make([]byte, backupCodeLength)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		// base32 avoids look-alike characters such as 0/O and 1/I
		encoded := base32.StdEncoding.EncodeToString(buf)[:backupCodeLength]
		codes[i] = encoded[:4] + "-" + encoded[4:]
	}
	return codes, nil
}

func hashBackupCodes(codes []string) []string {
	hashed := make([]string, len(codes))
	for i, code := range codes {
		hashed[i] = hashBackupCode(code)
	}
	return hashed
}

func hashBackupCode(code string) string {
	clean := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), "-", "")
	sum := sha256.Sum256([]byte(clean))
	return hex.EncodeToString(sum[:])
}
