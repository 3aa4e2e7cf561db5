package errors

import (
	"strings"
	"unicode"
)

// ValidateSearchTerm validates a search term for the servers search.
// A term is required: searching without one would return the entire
// registry, which the API refuses to do cheaply.
func ValidateSearchTerm(term string) error {
	return validateNonEmpty(term, "search term")
}

// ValidateServerName validates a server name for detail lookup.
// Registry names are reverse-DNS style (e.g., "ai.waystation/gmail");
// validation here is intentionally loose, the registry is authoritative.
func ValidateServerName(name string) error {
	return validateNonEmpty(name, "server name")
}

// ValidateServerID validates a registry server ID.
func ValidateServerID(id string) error {
	return validateNonEmpty(id, "server ID")
}

func validateNonEmpty(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", field)
	}
	if len(value) > 256 {
		return New(ErrCodeInvalidInput, "%s too long (max 256 characters)", field)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
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

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
