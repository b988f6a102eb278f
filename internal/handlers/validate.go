package handlers

import (
	"strings"
	"unicode/utf8"

	"propage/internal/slug"
)

// Validation limits for profile and template fields.
const (
	maxNameLen     = 200
	maxSlugLen     = 100
	maxUsernameLen = 50
	maxBioLen      = 2_000
	maxTitleLen    = 300
	maxTextLen     = 1_000
	maxEmailLen    = 320
)

// validateNewTemplate checks template creation inputs and returns the first
// error found, or "" when valid.
func validateNewTemplate(pageSlug, name string) string {
	if utf8.RuneCountInString(pageSlug) > maxSlugLen {
		return "Slug is too long (max 100 characters)."
	}
	if !slug.Valid(pageSlug) {
		return "Slug must contain only lowercase letters, digits, and hyphens."
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	return ""
}

// validateNewUser checks user creation inputs and returns the first error found.
func validateNewUser(email, username, name string) string {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "A valid email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 50 characters)."
	}
	if !slug.Valid(username) {
		return "Username must contain only lowercase letters, digits, and hyphens."
	}
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	return ""
}

// validateSectionTitle checks a section or footer item title.
func validateSectionTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	return ""
}

// validateItemText checks a section item's text chip.
func validateItemText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "Text is required."
	}
	if utf8.RuneCountInString(text) > maxTextLen {
		return "Text is too long (max 1,000 characters)."
	}
	return ""
}
