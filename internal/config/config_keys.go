// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic used by the config command and the MCP config tools, where
// settings are addressed by dotted keys such as "limits.max_payload".
//
// Pointers hold optional numeric fields so "not set" and "set to zero"
// stay distinct and defaults apply only to the former.

package config

import (
	"fmt"
	"slices"
	"strconv"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"author.name", "author.email",
		"render.style",
		"limits.max_tag_length", "limits.max_payload",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "author.name":
		return c.Author.Name, nil
	case "author.email":
		return c.Author.Email, nil
	case "render.style":
		return c.Style(), nil
	case "limits.max_tag_length":
		return strconv.Itoa(c.MaxTagLength()), nil
	case "limits.max_payload":
		return strconv.FormatInt(c.MaxPayload(), 10), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "author.name":
		c.Author.Name = value
	case "author.email":
		c.Author.Email = value
	case "render.style":
		c.Render.Style = value
	case "limits.max_tag_length":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinMaxTagLength || n > MaxMaxTagLength {
			return fmt.Errorf("%w: limits.max_tag_length must be between %d and %d", ErrInvalidValue, MinMaxTagLength, MaxMaxTagLength)
		}
		c.Limits.MaxTagLength = &n
	case "limits.max_payload":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < MinMaxPayload || n > MaxMaxPayload {
			return fmt.Errorf("%w: limits.max_payload must be between %d and %d", ErrInvalidValue, MinMaxPayload, MaxMaxPayload)
		}
		c.Limits.MaxPayload = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	return map[string]string{
		"author.name":           c.Author.Name,
		"author.email":          c.Author.Email,
		"render.style":          c.Style(),
		"limits.max_tag_length": strconv.Itoa(c.MaxTagLength()),
		"limits.max_payload":    strconv.FormatInt(c.MaxPayload(), 10),
	}
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "author.name":
		return c.Author.Name != ""
	case "author.email":
		return c.Author.Email != ""
	case "render.style":
		return c.Render.Style != ""
	case "limits.max_tag_length":
		return c.Limits.MaxTagLength != nil
	case "limits.max_payload":
		return c.Limits.MaxPayload != nil
	default:
		return false
	}
}
