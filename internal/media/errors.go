package media

import "errors"

// Service errors
var (
	ErrValidation = errors.New("media item validation failed")
	ErrNotFound   = errors.New("media item not found")
	ErrFileSystem = errors.New("filesystem operation failed")
)

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
