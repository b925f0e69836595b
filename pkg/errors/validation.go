package errors

import (
	"strings"
	"unicode"
)

// maxKeyLength bounds identifiers that end up in file names and redis keys.
const maxKeyLength = 128

// ValidateKey validates an identifier (board ID, target key, widget ID)
// before it is used to build a file path or a storage key.
//
// The validation rules are intentionally conservative:
//   - No empty keys
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
func ValidateKey(kind, key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "%s cannot be empty", kind)
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "%s too long (max %d characters)", kind, maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidKey, "%s contains invalid characters", kind)
		}
	}

	if strings.ContainsAny(key, `/\`) {
		return New(ErrCodeInvalidKey, "%s cannot contain path separators", kind)
	}

	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidKey, "%s cannot contain path traversal sequences (..)", kind)
	}

	return nil
}
