// Package document renders crawled pages into Markdown files with a YAML
// front matter header.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/firedocs/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is recorded when the service reports no page language.
const DefaultLanguage = "en"

const frontMatterDelimiter = "---"

// FrontMatter is the header written at the top of every page file.
// Field order is the order of keys in the output.
type FrontMatter struct {
	Source      string `yaml:"source"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	CrawlDate   string `yaml:"crawl_date"`
	Path        string `yaml:"path,omitempty"`
}

// Render produces the file content for page. relPath is the page's path
// inside its documentation set and is recorded in the header.
func Render(page model.PageEvent, relPath string, crawledAt time.Time) ([]byte, error) {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = FirstHeading(page.MarkdownBody)
	}
	language := strings.TrimSpace(page.Language)
	if language == "" {
		language = DefaultLanguage
	}

	header, err := yaml.Marshal(FrontMatter{
		Source:      page.SourceURL,
		Title:       title,
		Description: strings.TrimSpace(page.Description),
		Language:    language,
		CrawlDate:   crawledAt.UTC().Format(time.RFC3339),
		Path:        relPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(header) + len(page.MarkdownBody) + 16)
	buf.WriteString(frontMatterDelimiter + "\n")
	buf.Write(header)
	buf.WriteString(frontMatterDelimiter + "\n\n")
	buf.WriteString(strings.TrimRight(page.MarkdownBody, "\n"))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// FirstHeading returns the text of the first level-1 heading in a Markdown
// document, or "" when there is none.
func FirstHeading(markdown string) string {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 1 {
			title = strings.TrimSpace(inlineText(heading, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// inlineText concatenates the text leaves below n.
func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch leaf := c.(type) {
		case *ast.Text:
			buf.Write(leaf.Segment.Value(source))
			if leaf.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(leaf.Value)
		default:
			buf.WriteString(inlineText(c, source))
		}
	}
	return buf.String()
}

// Parse splits a rendered page into its header and body.
// Files without a header yield a zero FrontMatter and the full content.
func Parse(data []byte) (FrontMatter, string, error) {
	var fm FrontMatter

	content := string(data)
	opening := frontMatterDelimiter + "\n"
	if !strings.HasPrefix(content, opening) {
		return fm, content, nil
	}

	rest := content[len(opening):]
	end := strings.Index(rest, "\n"+frontMatterDelimiter+"\n")
	if end < 0 {
		return fm, content, nil
	}

	if err := yaml.Unmarshal([]byte(rest[:end+1]), &fm); err != nil {
		return fm, content, fmt.Errorf("failed to decode front matter: %w", err)
	}
	body := rest[end+len(frontMatterDelimiter)+2:]
	return fm, strings.TrimPrefix(body, "\n"), nil
}
