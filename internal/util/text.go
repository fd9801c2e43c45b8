package util

import (
	"strings"
	"unicode/utf8"
)

// TrimOptional trims s and returns nil when the result is empty
func TrimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// RuneLen returns the number of characters in s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
