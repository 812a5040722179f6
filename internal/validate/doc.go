// Package validate provides input validation for exambank's domain types.
//
// This package enforces data integrity rules at the boundary between user
// input and the storage layer. Each validation function returns nil on
// success or an error wrapping one of the sentinels in errors.go:
//
//	if errors.Is(err, validate.ErrInvalidTag) {
//	    // handle invalid tag
//	}
//
// Empty values, null bytes and oversized inputs are rejected; anything else
// is stored as given.
package validate
