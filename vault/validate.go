package vault

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether the address has the user@host.tld shape.
func IsValidEmail(email string) bool {
	return emailRE.MatchString(strings.TrimSpace(email))
}

// IsValidPassword requires at least 8 characters with one uppercase letter,
// one lowercase letter, one digit, and one special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

// IsValidPin requires a 4 to 6 digit numeric PIN.
func IsValidPin(pin string) bool {
	if len(pin) < 4 || len(pin) > 6 {
		return false
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func validateNewSecrets(password, pin string) error {
	if !IsValidPassword(password) {
		return validationErrorf("password must be at least 8 characters long and contain an uppercase letter, a lowercase letter, a number, and a special character")
	}
	if !IsValidPin(pin) {
		return validationErrorf("invalid PIN format")
	}
	return nil
}
