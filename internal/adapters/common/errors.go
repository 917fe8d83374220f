package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors used to classify failures of a send. Every failure carries
// exactly one of them; callers test with errors.Is.
var (
	// ErrConfiguration marks missing or unusable credentials, detected before
	// any network call is made.
	ErrConfiguration = errors.New("configuration error")
	// ErrProvider marks a non-2xx response from the provider.
	ErrProvider = errors.New("provider error")
	// ErrTransport marks a connection level failure (refused, timeout, DNS).
	ErrTransport = errors.New("transport error")
	// ErrMalformedResponse marks a 2xx response whose body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidArguments marks tool arguments rejected by validation.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// classified attaches a sentinel to an error without altering its text.
type classified struct {
	kind error
	err  error
}

func (c *classified) Error() string   { return c.err.Error() }
func (c *classified) Unwrap() []error { return []error{c.kind, c.err} }

func classify(kind, err error) error {
	if err == nil {
		return kind
	}
	return &classified{kind: kind, err: err}
}

// WrapTransport annotates a network failure. The message is left untouched.
func WrapTransport(err error) error {
	return classify(ErrTransport, err)
}

// WrapMalformed annotates a decode failure of a successful response.
func WrapMalformed(err error) error {
	return classify(ErrMalformedResponse, err)
}

// Configuration builds a configuration error with the supplied detail.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// InvalidArguments wraps a validation failure of tool input.
func InvalidArguments(err error) error {
	if err == nil {
		return ErrInvalidArguments
	}
	return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
}

// ProviderError describes a non-2xx response. Code, Message and MoreInfo are
// populated when the body parsed as the provider's error shape; Raw always
// holds the body text as received.
type ProviderError struct {
	StatusCode int
	Code       int
	Message    string
	MoreInfo   string
	Raw        string
}

// Error renders "Code <code>: <message> (More info: <url>)" for structured
// errors and the raw body verbatim otherwise.
func (e *ProviderError) Error() string {
	if e.Message == "" {
		if e.Raw != "" {
			return e.Raw
		}
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	code := e.Code
	if code == 0 {
		code = e.StatusCode
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Code %d: %s", code, e.Message)
	if e.MoreInfo != "" {
		fmt.Fprintf(&b, " (More info: %s)", e.MoreInfo)
	}
	return b.String()
}

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}
