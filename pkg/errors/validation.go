package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength bounds node, port and edge identifiers.
const MaxNameLength = 256

// ValidateName validates an identifier from an input graph description.
// The kind is used only for the message ("node", "port", "edge").
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of [MaxNameLength] characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id %q contains control characters", kind, name)
		}
	}

	return nil
}

// ValidatePath validates a file path given to the CLI or the API for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
