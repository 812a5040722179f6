// content.go implements payload and name validation.
//
// Payloads are opaque JSON; only their encoded size is checked.

package validate

import (
	"fmt"
	"strings"
)

// Payload validates the encoded size of a JSON payload. maxLen of 0 means
// no limit.
func Payload(field string, encoded []byte, maxLen int64) error {
	if maxLen > 0 && int64(len(encoded)) > maxLen {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrPayloadTooLarge, field, len(encoded), maxLen)
	}
	return nil
}

// Name validates a required display string such as a subject name or a
// student's first name.
func Name(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidName, field)
	}
	if strings.ContainsRune(v, 0) {
		return fmt.Errorf("%w: null byte in %s", ErrInvalidName, field)
	}
	return nil
}
