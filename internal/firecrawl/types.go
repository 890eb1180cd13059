package firecrawl

import (
	"fmt"
	"strings"
	"time"
)

// Transport selects how crawl events are delivered.
type Transport string

const (
	// TransportWebsocket streams events over a websocket connection.
	TransportWebsocket Transport = "websocket"

	// TransportPoll polls the job status endpoint.
	TransportPoll Transport = "poll"
)

// ParseTransport converts a configuration value to a Transport.
// The empty string selects TransportWebsocket.
func ParseTransport(s string) (Transport, error) {
	switch Transport(strings.ToLower(strings.TrimSpace(s))) {
	case "", TransportWebsocket:
		return TransportWebsocket, nil
	case TransportPoll:
		return TransportPoll, nil
	default:
		return "", fmt.Errorf("unknown transport %q: expected %q or %q", s, TransportWebsocket, TransportPoll)
	}
}

// FormatMarkdown is the scrape format requested for every page.
const FormatMarkdown = "markdown"

// ScrapeOptions controls how each crawled page is scraped.
type ScrapeOptions struct {
	Formats []string `json:"formats,omitempty"`
}

// CrawlOptions are the crawl parameters sent when a job is started.
// Zero values are omitted so the service defaults apply.
type CrawlOptions struct {
	IncludePaths       []string      `json:"includePaths,omitempty"`
	ExcludePaths       []string      `json:"excludePaths,omitempty"`
	MaxDepth           int           `json:"maxDepth,omitempty"`
	Limit              int           `json:"limit,omitempty"`
	AllowBackwardLinks bool          `json:"allowBackwardLinks,omitempty"`
	AllowExternalLinks bool          `json:"allowExternalLinks,omitempty"`
	ScrapeOptions      ScrapeOptions `json:"scrapeOptions"`
}

// crawlRequest is the body of POST /v1/crawl.
type crawlRequest struct {
	URL string `json:"url"`
	CrawlOptions
}

// startResponse is the body returned by POST /v1/crawl.
type startResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

// Metadata describes a crawled page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	SourceURL   string `json:"sourceURL"`
	URL         string `json:"url"`
	StatusCode  int    `json:"statusCode"`
	Error       string `json:"error,omitempty"`
}

// Document is a single crawled page.
type Document struct {
	Markdown string   `json:"markdown"`
	Metadata Metadata `json:"metadata"`
}

// PageURL returns the URL the page was requested from, falling back to the
// final URL after redirects.
func (d Document) PageURL() string {
	if d.Metadata.SourceURL != "" {
		return d.Metadata.SourceURL
	}
	return d.Metadata.URL
}

// JobStatus is the normalized state of a remote crawl job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// normalizeStatus maps the service's status strings onto JobStatus.
// Anything that is not terminal ("scraping", "waiting", ...) is pending.
func normalizeStatus(s string) JobStatus {
	switch strings.ToLower(s) {
	case "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusPending
	}
}

// Terminal reports whether no further pages will be produced.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CrawlStatus is a snapshot of a crawl job.
type CrawlStatus struct {
	ID          string
	Status      JobStatus
	Total       int
	Completed   int
	CreditsUsed int
	ExpiresAt   time.Time
	Data        []Document
}

// statusResponse is the body returned by GET /v1/crawl/{id}.
type statusResponse struct {
	Success     bool       `json:"success"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Completed   int        `json:"completed"`
	CreditsUsed int        `json:"creditsUsed"`
	ExpiresAt   string     `json:"expiresAt"`
	Next        string     `json:"next"`
	Data        []Document `json:"data"`
	Error       string     `json:"error"`
}

// EventType identifies the kind of a crawl event.
type EventType int

const (
	// EventDocument carries one crawled page.
	EventDocument EventType = iota

	// EventDone marks successful completion of the crawl.
	EventDone

	// EventError marks a failed crawl; Event.Err holds the cause.
	EventError
)

// String returns the lower-case name of the event type.
func (t EventType) String() string {
	switch t {
	case EventDocument:
		return "document"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single notification from a crawl job.
type Event struct {
	Type     EventType
	Document *Document
	Err      error
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

func documentEvent(doc Document) Event {
	return Event{Type: EventDocument, Document: &doc}
}
