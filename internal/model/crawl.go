package model

import "path"

// CrawlRequest describes one user-initiated crawl run.
// The relationship between StartURL and ScopeURL is checked when the input is
// collected (see naming.ValidateScope), not by the orchestrator.
type CrawlRequest struct {
	// StartURL is the absolute URL the remote crawler begins from.
	StartURL string `json:"start_url"`

	// ScopeURL optionally restricts the crawl to a subtree of the site.
	// When set, StartURL must lexically begin with ScopeURL.
	ScopeURL string `json:"scope_url,omitempty"`

	// OutputFolder is the output root, relative to the workspace.
	OutputFolder string `json:"output_folder"`
}

// DomainSource returns the URL used to derive the domain folder:
// the scope URL when present, the start URL otherwise.
func (r CrawlRequest) DomainSource() string {
	if r.ScopeURL != "" {
		return r.ScopeURL
	}
	return r.StartURL
}

// PageEvent is one crawled page received from the remote crawl stream.
// It is consumed immediately to produce a file and is never persisted.
type PageEvent struct {
	// SourceURL is the URL the page was fetched from.
	SourceURL string `json:"source_url"`

	// Title is the page title reported by the remote service, if any.
	Title string `json:"title,omitempty"`

	// MarkdownBody is the rendered page content.
	MarkdownBody string `json:"markdown_body"`

	// Language is the page language reported by the remote service, if any.
	Language string `json:"language,omitempty"`

	// Description is the page meta description, if any.
	Description string `json:"description,omitempty"`
}

// DerivedPath is the local destination of a page.
// It is a pure function of the page URL (and optionally its title).
type DerivedPath struct {
	// DomainFolder is the sanitized hostname directory.
	DomainFolder string `json:"domain_folder"`

	// RelativeFile is the file path below DomainFolder, always ending in ".md".
	RelativeFile string `json:"relative_file"`
}

// Join returns the slash-separated path DomainFolder/RelativeFile.
func (d DerivedPath) Join() string {
	return path.Join(d.DomainFolder, d.RelativeFile)
}
