package crawler

import (
	"context"

	"github.com/nao1215/firedocs/internal/firecrawl"
	"github.com/nao1215/firedocs/internal/model"
)

// Sink is the file-system write target, rooted at the workspace.
// Paths are slash separated and relative to the root.
type Sink interface {
	MkdirAll(rel string) error
	WriteFile(rel string, data []byte) error
}

// CredentialStore persists the API key.
// Credential returns "" without error when no key is stored.
type CredentialStore interface {
	Credential(ctx context.Context) (string, error)
	SetCredential(ctx context.Context, apiKey string) error
	ClearCredential(ctx context.Context) error
}

// CredentialPrompter asks the user for an API key.
type CredentialPrompter interface {
	PromptCredential(ctx context.Context) (string, error)
}

// ProgressReporter displays incremental status messages.
type ProgressReporter interface {
	Report(message string)
}

// RunRecorder stores finished runs.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *model.CrawlOutcome) error
}

// Subscription is the event stream of one remote crawl job.
// Events is closed after the terminal event or once Close returns.
type Subscription interface {
	ID() string
	Events() <-chan firecrawl.Event
	Close() error
}

// CrawlService starts and cancels remote crawl jobs.
type CrawlService interface {
	Watch(ctx context.Context, startURL string, opts firecrawl.CrawlOptions) (Subscription, error)
	Cancel(ctx context.Context, jobID string) error
}

// ServiceFactory builds a CrawlService bound to an API key. The orchestrator
// calls it once per run so a changed key always produces a fresh client.
type ServiceFactory func(apiKey string) (CrawlService, error)

// ClientFactory returns a ServiceFactory backed by firecrawl.Client.
func ClientFactory(opts ...firecrawl.Option) ServiceFactory {
	return func(apiKey string) (CrawlService, error) {
		c, err := firecrawl.NewClient(apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return NewService(c), nil
	}
}

// NewService adapts a firecrawl.Client to CrawlService.
func NewService(c *firecrawl.Client) CrawlService {
	return &clientService{client: c}
}

type clientService struct {
	client *firecrawl.Client
}

func (s *clientService) Watch(ctx context.Context, startURL string, opts firecrawl.CrawlOptions) (Subscription, error) {
	w, err := s.client.Watch(ctx, startURL, opts)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *clientService) Cancel(ctx context.Context, jobID string) error {
	return s.client.Cancel(ctx, jobID)
}
