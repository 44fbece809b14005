package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxViewport bounds the width and height accepted from users.
const MaxViewport = 16384

// ValidateTierName rejects empty names and names that cannot be used as a
// CSS class suffix or a cache key component.
func ValidateTierName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTier, "tier name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidTier, "tier name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidTier, "tier name %q contains whitespace or control characters", name)
		}
		if strings.ContainsRune(`"'<>&/\`, r) {
			return New(ErrCodeInvalidTier, "tier name %q contains invalid character %q", name, r)
		}
	}
	return nil
}

// ValidatePositive checks that v is a finite number greater than zero.
func ValidatePositive(code Code, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(code, "%s must be positive, got %v", field, v)
	}
	return nil
}

// ValidateViewport checks the viewport dimensions and margin.
// A margin larger than half the viewport is allowed; it yields an empty sky.
func ValidateViewport(width, height, margin float64) error {
	if err := ValidatePositive(ErrCodeInvalidViewport, "width", width); err != nil {
		return err
	}
	if err := ValidatePositive(ErrCodeInvalidViewport, "height", height); err != nil {
		return err
	}
	if width > MaxViewport || height > MaxViewport {
		return New(ErrCodeInvalidViewport, "viewport too large (max %d)", MaxViewport)
	}
	if math.IsNaN(margin) || margin < 0 {
		return New(ErrCodeInvalidViewport, "margin must be non-negative, got %v", margin)
	}
	return nil
}

// ValidatePath validates an output or catalog file path.
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
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
