package moderation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gdg-garage/devotional-api/internal/apperr"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20

	PrayerRequestMinLength = 10
	PrayerRequestMaxLength = 700
)

var (
	usernameCharset = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)
	linkPattern     = regexp.MustCompile(`https?://`)
	digitPattern    = regexp.MustCompile(`\d`)
)

// ValidateUsername checks, in order: minimum length, maximum length, charset,
// profanity. The first failing rule is returned as an *apperr.ValidationError.
func (f *Filter) ValidateUsername(username string) error {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < UsernameMinLength {
		return apperr.Validation("username", "username must be at least 3 characters")
	}
	if utf8.RuneCountInString(username) > UsernameMaxLength {
		return apperr.Validation("username", "username must be at most 20 characters")
	}
	if !usernameCharset.MatchString(username) {
		return apperr.Validation("username", "use only letters, numbers and spaces")
	}
	if f.ContainsProfanity(username) {
		return apperr.Validation("username", "this username is not allowed")
	}
	return nil
}

func ValidateUsername(username string) error {
	return Default.ValidateUsername(username)
}

// ValidatePrayerRequest checks a community post before it is stored.
func (f *Filter) ValidatePrayerRequest(content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < PrayerRequestMinLength {
		return apperr.Validation("content", "share a little more about your request (at least 10 characters)")
	}
	if utf8.RuneCountInString(content) > PrayerRequestMaxLength {
		return apperr.Validation("content", "your request must be at most 700 characters")
	}
	if linkPattern.MatchString(content) {
		return apperr.Validation("content", "links are not allowed")
	}
	if digitPattern.MatchString(content) {
		return apperr.Validation("content", "numbers are not allowed")
	}
	if f.ContainsProfanity(content) {
		return apperr.Validation("content", "please use respectful language")
	}
	return nil
}
