package util

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidPhone is returned when a phone number is not E.164 compliant.
	ErrInvalidPhone = errors.New("invalid e164 phone number")
	// ErrInvalidAddress is returned when a sender or recipient address is not
	// a phone number, channel address or alphanumeric sender id.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidURL indicates that a URL failed validation.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidSID indicates a resource identifier is malformed.
	ErrInvalidSID = errors.New("invalid sid")
	// ErrOutOfRange indicates an integer outside of its allowed bounds.
	ErrOutOfRange = errors.New("value out of range")
)

var (
	e164Pattern         = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	alphanumericPattern = regexp.MustCompile(`^[A-Za-z0-9 ]{1,11}$`)
	sidPattern          = regexp.MustCompile(`^[A-Z]{2}[0-9a-fA-F]{32}$`)
)

// channelPrefixes lists the address prefixes accepted in front of an E.164 number.
var channelPrefixes = []string{"whatsapp:", "rcs:", "messenger:"}

// NormalizeE164 validates a phone number using the E.164 format and returns the
// normalized representation.
func NormalizeE164(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: value is empty", ErrInvalidPhone)
	}

	if !e164Pattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, trimmed)
	}

	return trimmed, nil
}

// NormalizeAddress accepts an E.164 number or a channel address such as
// "whatsapp:+15551234567". The channel prefix is lowercased.
func NormalizeAddress(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: value is empty", ErrInvalidAddress)
	}
	lower := strings.ToLower(trimmed)
	for _, prefix := range channelPrefixes {
		if strings.HasPrefix(lower, prefix) {
			number, err := NormalizeE164(trimmed[len(prefix):])
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
			}
			return prefix + number, nil
		}
	}
	number, err := NormalizeE164(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return number, nil
}

// NormalizeSender accepts everything NormalizeAddress does plus alphanumeric
// sender ids (1-11 characters, at least one letter).
func NormalizeSender(value string) (string, error) {
	if addr, err := NormalizeAddress(value); err == nil {
		return addr, nil
	}
	trimmed := strings.TrimSpace(value)
	if alphanumericPattern.MatchString(trimmed) && strings.IndexFunc(trimmed, isLetter) >= 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAddress, trimmed)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ValidateSID checks a two letter prefixed, 32 hex digit resource identifier.
func ValidateSID(prefix, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: value is empty", ErrInvalidSID)
	}
	if !sidPattern.MatchString(trimmed) || !strings.HasPrefix(trimmed, prefix) {
		return "", fmt.Errorf("%w: expected %s followed by 32 hex characters, got %q", ErrInvalidSID, prefix, trimmed)
	}
	return trimmed, nil
}

// EnsureRange checks min <= value <= max.
func EnsureRange(field string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrOutOfRange, field, min, max, value)
	}
	return nil
}

// EnsureMaxRunes ensures a string is not longer than the provided rune count.
func EnsureMaxRunes(field, value string, max int) error {
	if max <= 0 {
		return nil
	}
	length := utf8.RuneCountInString(value)
	if length > max {
		return fmt.Errorf("%s exceeds maximum length of %d characters", field, max)
	}
	return nil
}

// ValidateHTTPURL ensures the provided string is a valid HTTP or HTTPS URL.
func ValidateHTTPURL(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: value is empty", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	return trimmed, nil
}

// ValidateHTTPURLs validates each URL in the slice.
func ValidateHTTPURLs(values []string, min, max int) ([]string, error) {
	count := len(values)
	if min > 0 && count < min {
		return nil, fmt.Errorf("expected at least %d url(s); got %d", min, count)
	}
	if max > 0 && count > max {
		return nil, fmt.Errorf("expected at most %d url(s); got %d", max, count)
	}
	if count == 0 {
		return nil, nil
	}

	result := make([]string, 0, count)
	for idx, value := range values {
		normalized, err := ValidateHTTPURL(value)
		if err != nil {
			return nil, fmt.Errorf("url[%d]: %w", idx, err)
		}
		result = append(result, normalized)
	}
	return result, nil
}
