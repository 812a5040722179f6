// tag.go implements tag text validation.

package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Tag validates tag text.
//
// Validation rules:
//   - Empty or whitespace-only tags rejected
//   - Null bytes rejected
//   - Length in runes capped at maxLen if maxLen > 0
func Tag(t string, maxLen int) error {
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidTag)
	}
	if strings.ContainsRune(t, 0) {
		return fmt.Errorf("%w: null byte in tag", ErrInvalidTag)
	}
	if maxLen > 0 && utf8.RuneCountInString(t) > maxLen {
		return fmt.Errorf("%w: %d characters, limit %d", ErrTagTooLong, utf8.RuneCountInString(t), maxLen)
	}
	return nil
}
