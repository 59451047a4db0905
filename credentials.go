package identity

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MinPasswordLength is the provider's minimum accepted password length,
// enforced locally before any network call.
const MinPasswordLength = 6

// MinDisplayNameLength rejects single-character display names at signup.
const MinDisplayNameLength = 2

// emailPattern mirrors the membership client's form check: one "@", no
// whitespace, and a dot somewhere in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Credentials is transient form input. Values live for a single submission
// and are never persisted or cached.
type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"name,omitempty"`
}

// Normalize trims surrounding whitespace from every field. Validation always
// operates on the normalized value.
func (c Credentials) Normalize() Credentials {
	return Credentials{
		Email:       strings.TrimSpace(c.Email),
		Password:    strings.TrimSpace(c.Password),
		DisplayName: strings.TrimSpace(c.DisplayName),
	}
}

// ValidateLogin checks a login submission. Rules run in a fixed order and
// the first failure wins: required fields, email format, password length.
// Pure function, no network.
func (c Credentials) ValidateLogin() *Error {
	if err := validation.Validate(c.Email, validation.Required); err != nil {
		return errMissingFields()
	}
	if err := validation.Validate(c.Password, validation.Required); err != nil {
		return errMissingFields()
	}
	return c.validateFormats()
}

// ValidateRegistration checks a signup submission: required fields
// (including the display name), name length, email format, password length.
// First failure wins.
func (c Credentials) ValidateRegistration() *Error {
	if err := validation.Validate(c.DisplayName, validation.Required); err != nil {
		return errMissingFields()
	}
	if err := validation.Validate(c.Email, validation.Required); err != nil {
		return errMissingFields()
	}
	if err := validation.Validate(c.Password, validation.Required); err != nil {
		return errMissingFields()
	}
	if err := validation.Validate(c.DisplayName, validation.Length(MinDisplayNameLength, 0)); err != nil {
		return newError(KindInvalidName, "Please enter your full name.")
	}
	return c.validateFormats()
}

// ValidateReset checks a password-reset request, which only carries an email.
func (c Credentials) ValidateReset() *Error {
	if err := validation.Validate(c.Email, validation.Required); err != nil {
		return errMissingFields()
	}
	if err := validation.Validate(c.Email, validation.Match(emailPattern)); err != nil {
		return errInvalidEmail()
	}
	return nil
}

func (c Credentials) validateFormats() *Error {
	if err := validation.Validate(c.Email, validation.Match(emailPattern)); err != nil {
		return errInvalidEmail()
	}
	if err := validation.Validate(c.Password, validation.Length(MinPasswordLength, 0)); err != nil {
		return newError(KindWeakPassword, "Password must be at least 6 characters long.")
	}
	return nil
}

func errMissingFields() *Error {
	return newError(KindMissingFields, "Please fill in all fields.")
}

func errInvalidEmail() *Error {
	return newError(KindInvalidEmail, "Please enter a valid email address.")
}
