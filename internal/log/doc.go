// Package log provides secure logging for firedocs, built on log/slog.
//
// The SecureHandler masks secrets before they reach the output:
//   - attributes whose key looks sensitive (authorization, api_key, token, ...)
//   - values that are credentials in their entirety (Firecrawl "fc-" keys,
//     bearer tokens, JWTs, long opaque strings)
//   - Firecrawl keys and bearer tokens embedded in messages, strings, and
//     error values
//
// Masking applies in verbose mode too, so debug logs can be shared.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("firecrawl request", "url", target, "authorization", header)
//	// authorization=***REDACTED***
package log
