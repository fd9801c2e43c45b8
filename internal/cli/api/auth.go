package api

import "net/http"

// Login authenticates with email and password. When the account has 2FA
// enabled the result carries Requires2FA and no token.
func Login(email, password string) (*LoginResult, error) {
	var result LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := do(http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyLogin completes a login with a TOTP or backup code
func VerifyLogin(userID, code string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"user_id": userID, "code": code}
	if err := do(http.MethodPost, "/auth/2fa/verify-login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the account behind the current token
func Me() (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := do(http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
