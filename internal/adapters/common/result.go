package common

import "unicode/utf8"

// DefaultRawBodyLimit defines the maximum number of characters retained from a
// provider response body when it is attached to log entries.
const DefaultRawBodyLimit = 1024

// Result is the text outcome handed back to the agent host. IsError is set
// for every failure, whatever its class.
type Result struct {
	Text    string
	IsError bool
}

// TruncateRaw trims the supplied string to the specified rune limit. If limit
// is zero or negative it returns an empty string.
func TruncateRaw(raw string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(raw) <= limit {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:limit])
}
