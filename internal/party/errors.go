package party

import "errors"

// Service errors
var (
	ErrValidation  = errors.New("party validation failed")
	ErrNotFound    = errors.New("party not found")
	ErrUnknownItem = errors.New("media item does not exist")
)

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
