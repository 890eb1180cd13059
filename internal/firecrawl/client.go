package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the hosted Firecrawl API.
	DefaultBaseURL = "https://api.firecrawl.dev"

	// DefaultPollInterval is the status polling interval of TransportPoll.
	DefaultPollInterval = 2 * time.Second

	// DefaultUserAgent identifies the client to the service.
	DefaultUserAgent = "firedocs"

	crawlPath = "/v1/crawl"

	defaultHTTPTimeout = 60 * time.Second

	// maxResponseBytes caps a single response body. Completed crawl
	// results are paginated by the service, so a page stays well below it.
	maxResponseBytes = 64 << 20

	// maxStatusPages bounds how many "next" links CheckStatus follows.
	maxStatusPages = 1000

	// statusPagesPerSecond limits how fast "next" links are followed.
	statusPagesPerSecond = 5
)

// Client talks to the Firecrawl API.
// A Client is safe for concurrent use.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	transport    Transport
	pollInterval time.Duration
	userAgent    string
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (self-hosted instances, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for REST calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTransport selects how Watch delivers events.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithPollInterval sets the status polling interval for TransportPoll.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger for request and stream diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client authenticated with apiKey.
// It performs no network access; an invalid key surfaces on the first call.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		transport:    TransportWebsocket,
		pollInterval: DefaultPollInterval,
		userAgent:    DefaultUserAgent,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.baseURL)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	if _, err := ParseTransport(string(c.transport)); err != nil {
		return nil, err
	}
	return c, nil
}

// Transport returns the configured event transport.
func (c *Client) Transport() Transport {
	return c.transport
}

// StartCrawl starts an asynchronous crawl of startURL and returns the job ID.
// Markdown is always requested as the scrape format.
func (c *Client) StartCrawl(ctx context.Context, startURL string, opts CrawlOptions) (string, error) {
	if len(opts.ScrapeOptions.Formats) == 0 {
		opts.ScrapeOptions.Formats = []string{FormatMarkdown}
	}

	var resp startResponse
	body := crawlRequest{URL: startURL, CrawlOptions: opts}
	if err := c.do(ctx, http.MethodPost, c.baseURL+crawlPath, body, &resp); err != nil {
		return "", fmt.Errorf("failed to start crawl: %w", err)
	}
	if !resp.Success || resp.ID == "" {
		msg := resp.Error
		if msg == "" {
			msg = "service did not return a job ID"
		}
		return "", fmt.Errorf("failed to start crawl: %w", &APIError{StatusCode: http.StatusOK, Message: msg})
	}

	c.logger.Debug("crawl started", "job_id", resp.ID, "url", startURL)
	return resp.ID, nil
}

// CheckStatus returns the current state of a crawl job, including every page
// crawled so far. Paginated results are followed and concatenated.
func (c *Client) CheckStatus(ctx context.Context, jobID string) (*CrawlStatus, error) {
	limiter := rate.NewLimiter(rate.Limit(statusPagesPerSecond), 1)
	target := c.jobURL(jobID)
	status := &CrawlStatus{ID: jobID}

	for page := 0; target != "" && page < maxStatusPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var resp statusResponse
		if err := c.do(ctx, http.MethodGet, target, nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to check crawl status: %w", err)
		}

		if page == 0 {
			status.Status = normalizeStatus(resp.Status)
			status.Total = resp.Total
			status.Completed = resp.Completed
			status.CreditsUsed = resp.CreditsUsed
			if t, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
				status.ExpiresAt = t
			}
		}
		status.Data = append(status.Data, resp.Data...)

		if resp.Next == target {
			break
		}
		target = resp.Next
	}
	return status, nil
}

// Cancel asks the service to stop a crawl job.
func (c *Client) Cancel(ctx context.Context, jobID string) error {
	if err := c.do(ctx, http.MethodDelete, c.jobURL(jobID), nil, nil); err != nil {
		return fmt.Errorf("failed to cancel crawl: %w", err)
	}
	c.logger.Debug("crawl cancelled", "job_id", jobID)
	return nil
}

func (c *Client) jobURL(jobID string) string {
	return c.baseURL + crawlPath + "/" + url.PathEscape(jobID)
}

// do performs an authenticated JSON request. Non-2xx responses become
// *APIError; out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("firecrawl request", "method", method, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// newAPIError extracts the service's error text from a failed response.
func newAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// errorf builds the error carried by a terminal error event.
func errorf(base error, msg string) error {
	if msg == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, msg)
}
