// errors.go defines sentinel errors for validation failures.
//
// Sentinel errors (not error types) because validation failures carry no
// context beyond the category. Detailed messages come from wrapping these
// with fmt.Errorf in the validation functions.

package validate

import "errors"

var (
	ErrInvalidTag      = errors.New("invalid tag")
	ErrTagTooLong      = errors.New("tag too long")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidName     = errors.New("invalid name")
)
