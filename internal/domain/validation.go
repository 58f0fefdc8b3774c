package domain

import "regexp"

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{4,32}$`)

// ValidateUsername checks username format: lowercase alphanumerics and
// underscores, 4 to 32 characters.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateName checks a first or last name.
func ValidateName(name string) error {
	if len(name) < 2 {
		return ErrInvalidName
	}
	return nil
}
