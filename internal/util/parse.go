package util

import (
	"strconv"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseLimit reads ?limit= clamped to [1, max], defaulting to def
func ParseLimit(c interface{ Query(string) string }, def, max int) int {
	limit := ParseInt(c.Query("limit"), def)
	if limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
