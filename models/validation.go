package models

import (
	"regexp"
	"strings"
)

// Field length limits shared by the store and the HTTP layer
const (
	MaxEmailLength       = 255
	MinPasswordLength    = 4
	MaxPasswordLength    = 100
	MaxCommentLength     = 500
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxChildNameLength   = 50
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lowercases an identity string
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether the string looks like an email address
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && len(email) <= MaxEmailLength && emailPattern.MatchString(email)
}

// SanitizeText escapes HTML-sensitive characters in user-supplied text
func SanitizeText(text string) string {
	replacer := strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)
	return replacer.Replace(text)
}
