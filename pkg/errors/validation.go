package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// datasetIDRegex matches dataset identifiers safe to embed in storage keys.
var datasetIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDatasetID validates a dataset identifier. Dataset ids become part
// of persistence keys and file names, so the rules are conservative:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Letters, digits, dots, dashes and underscores only
func ValidateDatasetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDataset, "dataset id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidDataset, "dataset id too long (max 128 characters)")
	}

	if !datasetIDRegex.MatchString(id) {
		return New(ErrCodeInvalidDataset, "invalid dataset id: %q", id)
	}

	return nil
}

// ValidateNodeID validates a hierarchy node identifier. Node ids flow into
// placement and edge ids, so they must be printable and free of separators
// that would make derived ids ambiguous.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains control characters")
		}
	}

	return nil
}

// ValidatePath validates a local file path for safety.
// It prevents path traversal and ensures reasonable path length.
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

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
