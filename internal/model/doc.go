// Package model defines the core data structures shared by firedocs packages.
//
// This package contains the following main types:
//   - CrawlRequest: what the user asked to crawl and where to put it
//   - PageEvent: one crawled page as delivered by the remote crawl service
//   - DerivedPath: the local location a page is written to
//   - CrawlOutcome: the terminal state of one crawl run
//   - DocSet: a materialized documentation folder on disk
//
// Models live in their own package so that the crawler, store and report
// packages can share them without import cycles. All of them are plain
// values that serialize to JSON for history storage and --json output.
package model
