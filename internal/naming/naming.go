// Package naming maps crawled URLs to local file-system names.
//
// Every function here is pure: no network access, no I/O, and the same input
// always yields the same output. Malformed input never panics or returns an
// error from the derivation functions; it degrades to a fixed fallback so
// callers can use the result directly as a path component.
package naming

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// UnknownDomain is the domain folder used when a URL has no usable host.
	UnknownDomain = "unknown-domain"

	// IndexFile is the file name used for URLs without path segments.
	IndexFile = "index.md"

	// RootPattern is the inclusion pattern that matches every path of a site.
	RootPattern = "/*"

	// MarkdownExt is appended to every derived file path.
	MarkdownExt = ".md"

	domainSeparator = "_"
	pathSeparator   = "/"
)

var (
	nonAlnumRun     = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedSlashes = regexp.MustCompile(`/{2,}`)
	slugDisallowed  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)

	// unsafeSegmentChars are characters that are not portable in file names.
	unsafeSegmentChars = regexp.MustCompile(`[<>:"\\|?*\x00-\x1f]`)
)

// DomainFolder converts a URL's hostname into a folder name.
// Internationalized hostnames are converted to their ASCII form first, then
// lower-cased, and every run of characters outside [a-z0-9] becomes "_".
// Returns UnknownDomain when the URL cannot be parsed or has no host.
func DomainFolder(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return UnknownDomain
	}

	host := u.Hostname()
	if host == "" {
		return UnknownDomain
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}

	folder := nonAlnumRun.ReplaceAllString(strings.ToLower(host), domainSeparator)
	folder = strings.Trim(folder, domainSeparator)
	if folder == "" {
		return UnknownDomain
	}
	return folder
}

// RelativeFilePath converts a URL (and optional page title) into a relative
// file path below the domain folder.
//
// The URL path is split on "/" and empty segments are dropped. When a title
// is given, its slug is appended as a final segment. Segments are joined with
// "/", so the local tree mirrors the site hierarchy, and ".md" is appended.
// URLs without segments and without a title map to IndexFile, as do URLs
// that cannot be parsed or lack a scheme and host.
//
// The result never starts or ends with "/" and never contains "." or ".."
// segments, so it is always local to the domain folder.
func RelativeFilePath(rawURL, title string) string {
	u, ok := parseAbsolute(rawURL)
	if !ok {
		return IndexFile
	}

	segments := pathSegments(u.Path)
	if slug := TitleSlug(title); slug != "" {
		segments = append(segments, slug)
	}
	if len(segments) == 0 {
		return IndexFile
	}

	joined := strings.Join(segments, pathSeparator)
	joined = repeatedSlashes.ReplaceAllString(joined, pathSeparator)
	joined = strings.Trim(joined, pathSeparator)
	if joined == "" {
		return IndexFile
	}
	return joined + MarkdownExt
}

// pathSegments splits a URL path into file-system safe segments.
func pathSegments(p string) []string {
	parts := strings.Split(p, pathSeparator)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(unsafeSegmentChars.ReplaceAllString(part, "-"))
		if part == "" || part == "." || part == ".." {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// TitleSlug converts a page title into a file-name slug.
// Accents are stripped ("Café" becomes "cafe"), the result is lower-cased,
// characters outside [a-z0-9], space and hyphen are removed, and whitespace
// runs become a single hyphen. An empty or fully stripped title yields "".
func TitleSlug(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	// The transformer chain carries state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, title)
	if err != nil {
		s = title
	}

	s = strings.ToLower(s)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-")
}

// ScopePattern converts a scope URL into an inclusion pattern for the remote
// crawler. An empty, unparsable or relative URL yields "" (no restriction). A URL
// without path segments yields RootPattern. Otherwise the pattern covers the
// first path segment only: "https://x.com/docs/api" becomes "/docs/*", so
// sibling top-level sections are excluded but deeper siblings are not.
func ScopePattern(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, ok := parseAbsolute(rawURL)
	if !ok {
		return ""
	}

	// The remote crawler matches against the encoded path.
	segments := strings.FieldsFunc(u.EscapedPath(), func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return RootPattern
	}
	return pathSeparator + segments[0] + RootPattern
}

// parseAbsolute parses rawURL and reports whether it has a scheme and a host.
func parseAbsolute(rawURL string) (*url.URL, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, false
	}
	return u, true
}
