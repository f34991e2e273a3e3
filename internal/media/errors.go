package media

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("media item not found")
	// ErrInvalidType is returned for files outside the collection's accepted types.
	ErrInvalidType = errors.New("unsupported file type")
	// ErrTooLarge is returned for files above the collection's size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("file is empty")
	// ErrUnsupported is returned for edits a collection does not allow.
	ErrUnsupported = errors.New("operation not supported for this collection")
)

// IsValidation reports whether err was raised before any storage or
// database call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrUnsupported)
}
