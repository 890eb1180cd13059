// Package crawler drives one documentation crawl run from start to finish.
//
// # Architecture
//
// The Orchestrator is the only type callers need. Run resolves the API key,
// starts a remote crawl through a CrawlService and consumes the event stream
// of the returned Subscription. Every page event is rendered with the
// document package and written through a Sink, under a domain folder derived
// with the naming package.
//
// Writes are fanned out through an errgroup with a bounded number of
// concurrent writers. Two pages that map to the same file are resolved in
// arrival order: the later page wins.
//
// # Outcome
//
// A run settles exactly once:
//
//   - Completed when the stream signals "done"
//   - Failed on a stream error, a start failure or the run timeout
//   - Cancelled when the caller's context is cancelled
//
// Files written before a failure or cancellation are left in place.
// A write failure for a single page is logged and counted in
// CrawlOutcome.Skipped; it never aborts the run.
//
// # Usage
//
//	orch := crawler.New(sink, stateDB, crawler.ClientFactory(),
//	    crawler.WithProgress(progress),
//	    crawler.WithPrompter(prompter),
//	)
//	outcome, err := orch.Run(ctx, req)
package crawler
