package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultAPIURL is the hosted Firecrawl API.
	DefaultAPIURL = "https://api.firecrawl.dev"

	// DefaultDocsFolder is the output root, relative to the workspace.
	DefaultDocsFolder = "docs"

	// DefaultTransport streams crawl events over a websocket.
	DefaultTransport = TransportWebsocket

	// DefaultTimeout bounds a whole crawl run. Large documentation sites
	// take several minutes on the hosted service.
	DefaultTimeout = 30 * time.Minute

	// DefaultPollInterval is the status polling interval of the poll transport.
	DefaultPollInterval = 2 * time.Second

	// DefaultWriteConcurrency is the number of pages written in parallel.
	DefaultWriteConcurrency = 4

	// DefaultHistoryLimit is the number of runs shown by the history command.
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "firedocs"
)

// Transport names accepted by the transport setting.
const (
	TransportWebsocket = "websocket"
	TransportPoll      = "poll"
)

// Config holds all configuration options for firedocs.
// It is populated from defaults, then the settings file, then CLI flags,
// and passed to the commands explicitly rather than through global state.
type Config struct {
	// APIURL is the Firecrawl API base URL. Self-hosted instances use
	// their own address.
	APIURL string

	// Transport selects how crawl events are received:
	// "websocket" (pushed by the server) or "poll" (status polling).
	Transport string

	// Timeout bounds a whole crawl run. Zero disables the limit.
	Timeout time.Duration

	// PollInterval is the status polling interval of the poll transport.
	PollInterval time.Duration

	// DocsFolder is the output root, relative to the workspace.
	DocsFolder string

	// AutoIndex prints the materialized file tree after a completed crawl.
	AutoIndex bool

	// Limit caps the number of crawled pages. Zero uses the service default.
	Limit int

	// MaxDepth caps the link depth from the start URL. Zero uses the
	// service default.
	MaxDepth int

	// AllowExternalLinks lets the crawler follow links to other hosts.
	AllowExternalLinks bool

	// TitleInFilename appends the page title slug to derived file paths.
	TitleInFilename bool

	// WriteConcurrency is the number of pages written in parallel.
	WriteConcurrency int

	// Workspace is the directory output paths are relative to.
	// Empty means the current directory.
	Workspace string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// NoPrompt disables interactive prompts; missing input is an error.
	NoPrompt bool

	// ConfigFilePath is the path of the settings file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// SiteConfigs holds the per-site overrides of the settings file.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// DBDir is the directory of the state database holding the API key and
	// run history. Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:           DefaultAPIURL,
		Transport:        DefaultTransport,
		Timeout:          DefaultTimeout,
		PollInterval:     DefaultPollInterval,
		DocsFolder:       DefaultDocsFolder,
		AutoIndex:        true,
		WriteConcurrency: DefaultWriteConcurrency,
		DBDir:            XDGDataDir(),
	}
}

// ApplyFile overlays the settings section of a settings file on c.
// Zero values in the file leave the current value untouched.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.SiteConfigs = f

	s := f.Settings
	if s.APIURL != "" {
		c.APIURL = s.APIURL
	}
	if s.Transport != "" {
		c.Transport = s.Transport
	}
	if s.Timeout != nil {
		c.Timeout = *s.Timeout
	}
	if s.PollInterval != 0 {
		c.PollInterval = s.PollInterval
	}
	if s.DocsFolder != "" {
		c.DocsFolder = s.DocsFolder
	}
	if s.AutoIndex != nil {
		c.AutoIndex = *s.AutoIndex
	}
	if s.Limit != 0 {
		c.Limit = s.Limit
	}
	if s.MaxDepth != 0 {
		c.MaxDepth = s.MaxDepth
	}
	if s.AllowExternalLinks != nil {
		c.AllowExternalLinks = *s.AllowExternalLinks
	}
	if s.TitleInFilename != nil {
		c.TitleInFilename = *s.TitleInFilename
	}
	if s.WriteConcurrency != 0 {
		c.WriteConcurrency = s.WriteConcurrency
	}
}

// XDGDataDir returns the XDG data directory for firedocs.
// On Linux: ~/.local/share/firedocs
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for firedocs.
// On Linux: ~/.config/firedocs
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return ErrInvalidAPIURL
	}

	if c.Transport != TransportWebsocket && c.Transport != TransportPoll {
		return ErrInvalidTransport
	}

	// Zero disables the run timeout.
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if strings.TrimSpace(c.DocsFolder) == "" || !filepath.IsLocal(filepath.FromSlash(c.DocsFolder)) {
		return ErrInvalidDocsFolder
	}

	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.WriteConcurrency <= 0 {
		return ErrInvalidWriteConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
