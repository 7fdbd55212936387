package utils

import (
	"errors"
	"regexp"
)

var (
	// Twitch login rules: letters, digits, underscore. Seeded fixtures use
	// 3-char names, so the lower bound is 3 rather than Twitch's 4.
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,25}$`)
	channelRe  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	passwordMinLength = 8
	passwordMaxLength = 128
	whitespaceRe      = regexp.MustCompile(`\s`)
)

func ValidateUsername(s string) error {
	if !usernameRe.MatchString(s) {
		return errors.New("invalid username")
	}
	return nil
}

// ValidateChannelName rejects anything outside [A-Za-z0-9_]. Path traversal
// sequences, URL metacharacters, and empty names all fail here.
func ValidateChannelName(s string) error {
	if !channelRe.MatchString(s) {
		return errors.New("invalid channel name")
	}
	return nil
}

func ValidatePassword(s string) error {
	if len(s) < passwordMinLength {
		return errors.New("password too short (min 8 chars)")
	}
	if len(s) > passwordMaxLength {
		return errors.New("password too long (max 128 chars)")
	}
	if whitespaceRe.MatchString(s) {
		return errors.New("password must not contain spaces")
	}
	return nil
}
