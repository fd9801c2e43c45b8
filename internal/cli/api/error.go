package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// APIError is an error envelope returned by the server
type APIError struct {
	Code       string                 `json:"error"`
	Message    string                 `json:"message"`
	Field      string                 `json:"field"`
	Details    map[string]interface{} `json:"details"`
	StatusCode int                    `json:"-"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%d] %s: %s (%s)", e.StatusCode, e.Code, msg, e.Field)
	}
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, msg)
}

// CheckResponse turns a transport error or non-2xx response into an error
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsSuccess() {
		return nil
	}
	return ParseError(resp)
}

// ParseError parses an error response from the API
func ParseError(resp *resty.Response) error {
	var apiErr APIError
	if err := json.Unmarshal(resp.Body(), &apiErr); err != nil || apiErr.Code == "" {
		apiErr = APIError{Code: "UNKNOWN_ERROR", Message: string(resp.Body())}
	}
	apiErr.StatusCode = resp.StatusCode()
	return &apiErr
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
