package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/auth"
	"github.com/puffbuddy/backend/internal/middleware"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to, token string
}

func (r *recordingSender) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	r.to, r.token = to, token
	return nil
}

func (suite *HandlersTestSuite) TestRegister() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/auth/register", nil, map[string]string{
		"email":    "new@example.com",
		"password": "hunter2hunter2",
		"name":     "Newbie",
	})
	suite.requireStatus(w, http.StatusCreated)

	var resp auth.AuthResponse
	suite.decode(w, &resp)
	assert.NotEmpty(t, resp.Token)
	if assert.NotNil(t, resp.User.Email) {
		assert.Equal(t, "new@example.com", *resp.User.Email)
	}

	// The issued token authenticates
	w = suite.request(http.MethodGet, "/auth/me", &testUser{User: &resp.User, token: resp.Token}, nil)
	suite.requireStatus(w, http.StatusOK)
}

func (suite *HandlersTestSuite) TestRegisterValidation() {
	w := suite.request(http.MethodPost, "/auth/register", nil, map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})
	suite.requireStatus(w, http.StatusUnprocessableEntity)
}

func (suite *HandlersTestSuite) TestRegisterExistingUser() {
	suite.auth.RegisterFunc = func(req auth.RegisterRequest) (*auth.AuthResponse, error) {
		return nil, auth.ErrUserExists
	}

	w := suite.request(http.MethodPost, "/auth/register", nil, map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	suite.requireStatus(w, http.StatusConflict)
}

func (suite *HandlersTestSuite) TestLoginInvalidCredentials() {
	w := suite.request(http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	suite.requireStatus(w, http.StatusUnauthorized)

	var body map[string]interface{}
	suite.decode(w, &body)
	assert.Equal(suite.T(), "invalid credentials", body["message"])
}

func (suite *HandlersTestSuite) TestLoginRequiringTwoFactor() {
	suite.auth.LoginFunc = func(req auth.LoginRequest) (*auth.LoginResult, error) {
		return &auth.LoginResult{Requires2FA: true, UserID: suite.alice.ID}, nil
	}

	w := suite.request(http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(suite.T(), `{"requires_2fa":true,"user_id":"`+suite.alice.ID+`"}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestLoginSuccess() {
	suite.auth.LoginFunc = func(req auth.LoginRequest) (*auth.LoginResult, error) {
		return &auth.LoginResult{AuthResponse: &auth.AuthResponse{Token: "tok", User: *suite.alice.User}}, nil
	}

	w := suite.request(http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	})
	suite.requireStatus(w, http.StatusOK)

	var resp auth.AuthResponse
	suite.decode(w, &resp)
	assert.Equal(suite.T(), "tok", resp.Token)
	assert.Equal(suite.T(), suite.alice.ID, resp.User.ID)
}

func (suite *HandlersTestSuite) TestLoginAnonymous() {
	w := suite.request(http.MethodPost, "/auth/anonymous", nil, nil)
	suite.requireStatus(w, http.StatusCreated)

	var resp auth.AuthResponse
	suite.decode(w, &resp)
	assert.True(suite.T(), resp.User.IsAnonymous)
}

func (suite *HandlersTestSuite) TestMe() {
	w := suite.request(http.MethodGet, "/auth/me", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp struct {
		User models.User `json:"user"`
	}
	suite.decode(w, &resp)
	assert.Equal(suite.T(), suite.alice.ID, resp.User.ID)
}

func (suite *HandlersTestSuite) TestRequestPasswordResetSendsEmail() {
	t := suite.T()
	suite.auth.RequestPasswordResetFunc = func(email string) (*models.PasswordReset, error) {
		return &models.PasswordReset{UserID: suite.alice.ID, Token: "reset-token"}, nil
	}
	sender := &recordingSender{}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), suite.handlers, NewAuthHandlers(suite.auth, sender), RouteOptions{
		RequireAuth: middleware.RequireAuth(suite.auth),
	})

	body, _ := json.Marshal(map[string]string{"email": "alice@example.com"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/password-reset/request", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, "alice@example.com", sender.to)
	assert.Equal(t, "reset-token", sender.token)
}

func (suite *HandlersTestSuite) TestRequestPasswordResetUnknownEmailStillSucceeds() {
	suite.auth.RequestPasswordResetFunc = func(email string) (*models.PasswordReset, error) {
		return nil, auth.ErrUserNotFound
	}

	w := suite.request(http.MethodPost, "/auth/password-reset/request", nil, map[string]string{"email": "ghost@example.com"})
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(suite.T(), `{"success":true}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestResetPasswordInvalidToken() {
	suite.auth.ResetPasswordFunc = func(token, newPassword string) error {
		return auth.ErrInvalidResetToken
	}

	w := suite.request(http.MethodPost, "/auth/password-reset/confirm", nil, map[string]string{
		"token":        "bogus",
		"new_password": "hunter2hunter2",
	})
	suite.requireStatus(w, http.StatusBadRequest)
}

func (suite *HandlersTestSuite) TestResetPasswordInternalError() {
	suite.auth.ResetPasswordFunc = func(token, newPassword string) error {
		return errors.New("db down")
	}

	w := suite.request(http.MethodPost, "/auth/password-reset/confirm", nil, map[string]string{
		"token":        "bogus",
		"new_password": "hunter2hunter2",
	})
	suite.requireStatus(w, http.StatusInternalServerError)
}

func (suite *HandlersTestSuite) TestTwoFactorErrors() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/auth/2fa/verify", suite.alice, map[string]string{"code": "000000"})
	suite.requireStatus(w, http.StatusUnauthorized)
	var body map[string]interface{}
	suite.decode(w, &body)
	assert.Equal(t, "TWO_FACTOR_REQUIRED", body["error"])

	w = suite.request(http.MethodPost, "/auth/2fa/disable", suite.alice, map[string]string{})
	suite.requireStatus(w, http.StatusUnprocessableEntity)

	w = suite.request(http.MethodPost, "/auth/2fa/disable", suite.alice, map[string]string{"password": "hunter2hunter2"})
	suite.requireStatus(w, http.StatusBadRequest)

	w = suite.request(http.MethodPost, "/auth/2fa/verify-login", nil, map[string]string{"user_id": suite.alice.ID, "code": "123456"})
	suite.requireStatus(w, http.StatusUnauthorized)
}

func (suite *HandlersTestSuite) TestGoogleRoutesHiddenWhenDisabled() {
	w := suite.request(http.MethodGet, "/auth/google", nil, nil)
	suite.requireStatus(w, http.StatusNotFound)
}
