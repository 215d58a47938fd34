package users

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidField      = errors.New("invalid field")
	ErrDuplicateIdentity = errors.New("duplicate identity")
	ErrBadCredentials    = errors.New("bad credentials")
)

var (
	authIdPattern = regexp.MustCompile(`^(app|google|fb):[a-zA-Z0-9_-]{6,}[^_-]$`)
	pwdPattern    = regexp.MustCompile(`^[a-zA-Z0-9]{8,30}$`)
	// the email pattern follows the w3c input-type-email design
	emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$")
)

func invalidField(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidField, name)
}

func validateAuthId(authId string, field string) error {
	if !authIdPattern.MatchString(authId) {
		return invalidField(field)
	}
	return nil
}

func validatePassword(password string) error {
	if !pwdPattern.MatchString(password) {
		return invalidField("password")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return invalidField("email")
	}
	return nil
}
