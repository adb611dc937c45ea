package auth

import (
	"net/mail"
	"strings"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
)

// AcademicMarker must appear in the domain of every signup address.
const AcademicMarker = ".edu"

// MinPassword is the shortest password accepted at signup.
const MinPassword = 6

// NormalizeEmail lowercases and trims an address and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.ErrInvalidInput.With("invalid email address")
	}
	return email, nil
}

// CheckInstitutionalEmail enforces the college-address policy: the domain
// must contain ".edu" (".edu", ".edu.in" and similar all qualify).
func CheckInstitutionalEmail(email string) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(domain, AcademicMarker) {
		return "", apperr.ErrInvalidEmailDomain
	}
	return email, nil
}

// CheckPassword applies the minimum length rule.
func CheckPassword(password string) error {
	if len(password) < MinPassword {
		return apperr.ErrInvalidInput.With("password must be at least %d characters", MinPassword)
	}
	return nil
}
