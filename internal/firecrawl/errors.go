package firecrawl

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMissingAPIKey is returned by NewClient when no API key is given.
	ErrMissingAPIKey = errors.New("firecrawl API key is required")

	// ErrInvalidBaseURL is returned when the API base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid firecrawl API URL")

	// ErrUnauthorized is returned when the service rejects the API key.
	ErrUnauthorized = errors.New("firecrawl rejected the API key")

	// ErrPaymentRequired is returned when the account has no credits left.
	ErrPaymentRequired = errors.New("firecrawl account has insufficient credits")

	// ErrRateLimited is returned when the service throttles the client.
	ErrRateLimited = errors.New("firecrawl rate limit exceeded")

	// ErrCrawlFailed is reported when the remote crawl job fails.
	ErrCrawlFailed = errors.New("crawl failed")

	// ErrCrawlCancelled is reported when the remote crawl job was cancelled
	// by someone other than this watcher.
	ErrCrawlCancelled = errors.New("crawl was cancelled")

	// ErrWebsocket is returned when the event stream connection fails.
	ErrWebsocket = errors.New("firecrawl event stream failed")
)

// authMarkers are fragments of error messages the service uses when the
// API key is missing, malformed, or revoked.
var authMarkers = []string{
	"api_key",
	"api key",
	"unauthorized",
	"invalid token",
}

// APIError is an HTTP-level failure returned by the Firecrawl API.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the error text reported by the service, or the HTTP
	// status text when the body carried none.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("firecrawl API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known status codes to sentinel errors so callers can use
// errors.Is instead of inspecting StatusCode.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusPaymentRequired:
		return ErrPaymentRequired
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// IsAuthError reports whether err indicates an invalid or missing API key.
// Besides ErrUnauthorized, error messages mentioning the API key are treated
// as authentication failures, because the event stream reports them as
// plain text.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// isRetryable reports whether a failed status request may succeed later.
func isRetryable(err error) bool {
	if IsAuthError(err) || errors.Is(err, ErrPaymentRequired) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
