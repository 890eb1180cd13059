// Package firecrawl is a client for the Firecrawl crawl API.
//
// The client starts asynchronous crawl jobs, queries and cancels them, and
// streams crawled pages back to the caller as a channel of events. Two
// transports deliver those events:
//
//   - websocket: the server pushes "catchup", "document", "done" and "error"
//     messages over /v1/crawl/{id}, authenticated with the API key as the
//     websocket subprotocol.
//   - poll: the job status endpoint is polled at a fixed interval and pages
//     that appear in the result set are emitted in order.
//
// Regardless of transport, a Watcher's event channel carries zero or more
// document events followed by exactly one terminal event (done or error),
// after which the channel is closed. Closing the Watcher early closes the
// channel without a terminal event.
package firecrawl
