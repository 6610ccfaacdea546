package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseID parses a positive decimal record id, as given on the command line
// or in a query string.
func ParseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidID, "id cannot be empty")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, New(ErrCodeInvalidID, "invalid id %q: must be a positive integer", s)
	}
	if id <= 0 {
		return 0, New(ErrCodeInvalidID, "invalid id %d: must be a positive integer", id)
	}
	return id, nil
}

// ValidatePath validates a relative file path for safety.
//
// Rules:
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
