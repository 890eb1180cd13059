package config

import (
	"strings"
	"time"
)

// Settings is the "settings" section of the settings file. Pointer fields
// distinguish "not set" from an explicit false or zero.
type Settings struct {
	DocsFolder         string         `yaml:"docsFolder,omitempty"`
	AutoIndex          *bool          `yaml:"autoIndex,omitempty"`
	APIURL             string         `yaml:"apiUrl,omitempty"`
	Transport          string         `yaml:"transport,omitempty"`
	Timeout            *time.Duration `yaml:"timeout,omitempty"`
	PollInterval       time.Duration  `yaml:"pollInterval,omitempty"`
	Limit              int            `yaml:"limit,omitempty"`
	MaxDepth           int            `yaml:"maxDepth,omitempty"`
	AllowExternalLinks *bool          `yaml:"allowExternalLinks,omitempty"`
	TitleInFilename    *bool          `yaml:"titleInFilename,omitempty"`
	WriteConcurrency   int            `yaml:"writeConcurrency,omitempty"`
}

// SiteConfig holds crawl overrides for one documentation host.
type SiteConfig struct {
	// IncludePaths restricts the crawl to matching URL paths, in addition
	// to the pattern derived from the scope URL.
	IncludePaths []string `yaml:"includePaths,omitempty"`

	// ExcludePaths are URL path patterns the crawler skips.
	ExcludePaths []string `yaml:"excludePaths,omitempty"`

	// Limit overrides the page limit for this host. Zero keeps the global value.
	Limit int `yaml:"limit,omitempty"`

	// MaxDepth overrides the crawl depth for this host. Zero keeps the global value.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// AllowExternalLinks overrides the global setting when set.
	AllowExternalLinks *bool `yaml:"allowExternalLinks,omitempty"`
}

// File represents the structure of the settings file.
type File struct {
	// Settings overrides the built-in defaults.
	Settings Settings `yaml:"settings,omitempty"`

	// Sites maps host names (e.g. "docs.example.com") to their overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host, merging the
// host-specific entry over the defaults. Host names match case-insensitively.
// A nil File yields the zero SiteConfig.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		for name, sc := range cf.Sites {
			if strings.EqualFold(name, host) {
				siteConfig, ok = sc, true
				break
			}
		}
	}
	if !ok {
		return result
	}

	if len(siteConfig.IncludePaths) > 0 {
		result.IncludePaths = siteConfig.IncludePaths
	}
	if len(siteConfig.ExcludePaths) > 0 {
		result.ExcludePaths = siteConfig.ExcludePaths
	}
	if siteConfig.Limit != 0 {
		result.Limit = siteConfig.Limit
	}
	if siteConfig.MaxDepth != 0 {
		result.MaxDepth = siteConfig.MaxDepth
	}
	if siteConfig.AllowExternalLinks != nil {
		result.AllowExternalLinks = siteConfig.AllowExternalLinks
	}
	return result
}
