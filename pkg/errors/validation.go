package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a node id from an untrusted table for safety and
// correctness. It rejects ids that could be used for path traversal or
// injection when ids end up in cache keys, file names, or DOT output.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path traversal sequences (.., //)
//   - No null bytes or backslashes
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "node id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateNetworkID validates a network id taken from user input.
// Table network ids are positive integers; zero and negatives are rejected
// before any table scan happens.
func ValidateNetworkID(id int) error {
	if id <= 0 {
		return New(ErrCodeInvalidInput, "network id must be positive, got %d", id)
	}
	return nil
}

// ValidatePath validates a file path supplied by a user (theme files, table
// directories, output targets). It prevents path traversal out of the
// configured data root and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}

	return nil
}

// grantIDRegex matches grant identifiers like INST-R01-877572:
// an institution code, an activity code, and a serial number.
var grantIDRegex = regexp.MustCompile(`^[A-Z]{2,8}-[A-Z][0-9]{2}-[0-9]{4,8}$`)

// ValidateGrantID validates a grant identifier from a summary table.
func ValidateGrantID(id string) error {
	if err := ValidateNodeID(id); err != nil {
		return err
	}

	if !grantIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid grant id: %q", id)
	}

	return nil
}
