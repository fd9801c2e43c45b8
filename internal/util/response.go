package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/errors"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"go.uber.org/zap"
)

// RespondWithAPIError sends a structured API error response and aborts the chain
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.String("path", c.FullPath()),
	}
	if apiErr.Field != "" {
		fields = append(fields, zap.String("field", apiErr.Field))
	}
	if userID := c.GetString("user_id"); userID != "" {
		fields = append(fields, logger.WithUserID(userID))
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error", fields...)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Debug("API error", fields...)
	}
	metrics.Get().ErrorsTotal.WithLabelValues(string(apiErr.Code)).Inc()

	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}

// RespondError reports err as an APIError when it wraps one and as a 500 otherwise
func RespondError(c *gin.Context, err error, fallback string) {
	if apiErr, ok := errors.As(err); ok {
		RespondWithAPIError(c, apiErr)
		return
	}
	logger.ErrorWithFields(fallback, err, zap.String("path", c.FullPath()))
	RespondWithAPIError(c, errors.InternalError(fallback))
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := ""
	if len(message) > 0 {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Unauthorized(msg))
}

// RespondNotFound sends a 404 for the named resource
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message ...string) {
	msg := ""
	if len(message) > 0 {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Forbidden(msg))
}

// RespondInternalError sends a 500 and logs the cause
func RespondInternalError(c *gin.Context, message string, err error) {
	if err != nil {
		logger.ErrorWithFields(message, err, zap.String("path", c.FullPath()))
	}
	RespondWithAPIError(c, errors.InternalError(message))
}

// RespondConflict sends a 409 Conflict response with a verbatim message
func RespondConflict(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Conflict(message))
}

// RespondValidationError sends a 422 Unprocessable Entity response
func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, errors.ValidationError(field, message))
}

// RespondBindError converts a ShouldBind failure into a validation response
func RespondBindError(c *gin.Context, err error) {
	RespondWithAPIError(c, errors.ValidationError("body", err.Error()))
}
