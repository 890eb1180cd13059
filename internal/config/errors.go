package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrInvalidAPIURL is returned when the API URL is empty.
	ErrInvalidAPIURL = errors.New("invalid API URL: must not be empty")

	// ErrInvalidTransport is returned for an unknown transport name.
	ErrInvalidTransport = errors.New("invalid transport: must be \"websocket\" or \"poll\"")

	// ErrInvalidTimeout is returned when the run timeout is negative.
	// Use 0 to disable the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidDocsFolder is returned when the docs folder is empty or
	// points outside the workspace.
	ErrInvalidDocsFolder = errors.New("invalid docs folder: must be a relative path inside the workspace")

	// ErrInvalidLimit is returned when the page limit is negative.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrInvalidMaxDepth is returned when the crawl depth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidWriteConcurrency is returned when write concurrency is not positive.
	ErrInvalidWriteConcurrency = errors.New("invalid write concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
