package util

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HandleDBError responds to a database error.
// It returns true if a response was sent.
func HandleDBError(c *gin.Context, err error, resourceName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondNotFound(c, resourceName)
		return true
	}
	RespondInternalError(c, "Failed to load "+resourceName, err)
	return true
}

// IsNotFound reports whether err is a missing-row error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
