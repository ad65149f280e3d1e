package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// categoryKeyRegex matches safe category keys: lowercase slugs such as
// "design-systems" or "all". Keys are produced by slugifying post tags.
var categoryKeyRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateCategoryKey validates a category key for safety and correctness.
// It rejects keys that could be used for path traversal or injection when
// the key is interpolated into cache keys or request URLs.
//
// The validation rules are intentionally conservative:
//   - No empty keys
//   - No control characters
//   - Lowercase slug characters only (a-z, 0-9, -)
//   - Maximum length of 64 characters
func ValidateCategoryKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidCategory, "category key cannot be empty")
	}

	if len(key) > 64 {
		return New(ErrCodeInvalidCategory, "category key too long (max 64 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCategory, "category key contains invalid control characters")
		}
	}

	if !categoryKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidCategory, "invalid category key: %q", key)
	}

	return nil
}

// ValidateCardID validates a card identity for safety.
// Card identities come from remote documents and must not be trusted blindly.
//
// Validation rules:
//   - No empty identities
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateCardID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCard, "card id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidCard, "card id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCard, "card id contains invalid control characters")
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
			return New(ErrCodeInvalidCard, "card id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateViewportWidth validates a viewport width in CSS pixels.
// Zero and negative widths are rejected; so are absurd widths that point
// at a unit mix-up upstream.
func ValidateViewportWidth(width int) error {
	if width <= 0 {
		return New(ErrCodeInvalidViewport, "viewport width must be positive, got %d", width)
	}

	const maxViewportWidth = 16384
	if width > maxViewportWidth {
		return New(ErrCodeInvalidViewport, "viewport width too large (max %d), got %d", maxViewportWidth, width)
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
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

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
