package services

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("too many attempts")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validateInput runs the struct's validate tags and reports the first failure.
func validateInput(input interface{}) error {
	v := validate.Struct(input)
	if !v.Validate() {
		return invalidf("%s", v.Errors.One())
	}
	return nil
}
