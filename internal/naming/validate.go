package naming

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL is returned when input is not an absolute URL with a host.
	ErrInvalidURL = errors.New("please enter a valid URL")

	// ErrScopeMismatch is returned when the start URL is not under the scope URL.
	ErrScopeMismatch = errors.New("starting point URL must be under the scope URL")
)

// ValidateURL checks that raw parses as an absolute URL with a host.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	return nil
}

// ValidateScope checks an optional scope URL against the start URL.
// An empty scope is always valid. Otherwise the scope must be a valid URL and
// a literal string prefix of the start URL.
func ValidateScope(startURL, scopeURL string) error {
	if scopeURL == "" {
		return nil
	}
	if err := ValidateURL(scopeURL); err != nil {
		return err
	}
	if !strings.HasPrefix(startURL, scopeURL) {
		return fmt.Errorf("%w: %q does not start with %q", ErrScopeMismatch, startURL, scopeURL)
	}
	return nil
}
