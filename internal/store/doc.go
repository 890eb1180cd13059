// Package store provides the SQLite-backed state of firedocs.
//
// The state database holds two things:
//   - settings: a small key/value table. The Firecrawl API key lives here
//     under CredentialKey rather than in the YAML settings file, so the
//     settings file can be shared or committed without leaking it.
//   - crawl_runs: one row per finished crawl run, used by the history
//     command.
//
// The database is a single file (modernc.org/sqlite, no cgo) in the XDG
// data directory.
package store
