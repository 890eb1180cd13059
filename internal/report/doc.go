// Package report renders crawl results for the terminal and for sharing.
//
// Three writers are available:
//   - SimpleWriter: plain text for terminal display, with colored status
//   - MarkdownWriter: Markdown tables and alerts
//   - JSONWriter: structured JSON for tool integration
//
// Every writer renders a single run summary (Write), the run history
// (WriteHistory) and the documentation sets found in the docs folder
// (WriteDocSets).
package report
