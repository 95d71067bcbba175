package user

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	passwordvalidator "github.com/wagslane/go-password-validator"

	"account/infrastructure"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// minPasswordEntropy is intentionally low; the hard limits are length
// based, the entropy check only rejects degenerate inputs like "aaaaaa".
const minPasswordEntropy = 25

// ValidateEmail checks the address shape. mail.ParseAddress accepts
// local-only addresses, so the domain dot is checked separately.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return infrastructure.InvalidInput("email", "is not a valid address")
	}
	at := strings.LastIndex(email, "@")
	if at < 0 || !strings.Contains(email[at:], ".") {
		return infrastructure.InvalidInput("email", "is not a valid address")
	}
	return nil
}

func ValidateUsername(username string) error {
	// Byte length is fine here: the character-class check below restricts
	// usernames to single-byte characters anyway.
	if len(username) < 3 || len(username) > 12 {
		return infrastructure.InvalidInput("username", "must be 3-12 characters")
	}
	if !usernamePattern.MatchString(username) {
		return infrastructure.InvalidInput("username", "may only contain letters, digits and . _ -")
	}
	return nil
}

// ValidateNickname counts characters, not bytes; nicknames are free-form
// and multi-byte input is legal.
func ValidateNickname(nickname string) error {
	if n := utf8.RuneCountInString(nickname); n < 3 || n > 12 {
		return infrastructure.InvalidInput("nickname", "must be 3-12 characters")
	}
	return nil
}

func ValidatePassword(password string) error {
	if n := utf8.RuneCountInString(password); n < 6 || n > 24 {
		return infrastructure.InvalidInput("password", "must be 6-24 characters")
	}
	if err := passwordvalidator.Validate(password, minPasswordEntropy); err != nil {
		return infrastructure.InvalidInput("password", "is too weak")
	}
	return nil
}

func ValidateEmailCode(code int) error {
	if code < 100000 || code > 999999 {
		return infrastructure.InvalidInput("emailCode", "must be a 6-digit code")
	}
	return nil
}
