package crawler

import "errors"

var (
	// ErrNoWorkspace is returned when no output sink is available.
	ErrNoWorkspace = errors.New("no workspace folder is open")

	// ErrMissingCredential is returned when no API key is stored and none
	// was supplied at the prompt.
	ErrMissingCredential = errors.New("firecrawl API key is required")

	// ErrInvalidCredential marks a run rejected by the remote service because
	// of the API key. The stored key has been cleared when this is returned.
	ErrInvalidCredential = errors.New("invalid firecrawl API key, please configure it again")

	// ErrRemote marks a run that failed on the remote side.
	ErrRemote = errors.New("remote crawl failed")

	// ErrTimeout marks a run that did not finish within the run timeout.
	ErrTimeout = errors.New("crawl timed out")

	// errStreamClosed is reported when the event stream ends without a
	// terminal event.
	errStreamClosed = errors.New("event stream ended before the crawl finished")
)
