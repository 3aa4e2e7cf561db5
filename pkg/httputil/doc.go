// Package httputil provides HTTP utilities for the registry client.
//
// # Retry
//
// [Retry] wraps a request with automatic retry for transient failures:
//
//   - Network errors (connection refused, timeouts)
//   - 5xx server errors
//   - 429 rate limit responses
//
// Transient failures must be marked with [Retryable]; everything else is
// terminal and surfaces immediately, so deterministic failures (404,
// malformed payloads) never waste latency on retries.
//
// It uses exponential backoff with a cap:
//
//	err := httputil.Retry(ctx, httputil.DefaultStrategy(), "GET /v0/servers", func() error {
//	    return doRequest()
//	})
//	var ex *httputil.ExhaustedError
//	if errors.As(err, &ex) {
//	    log.Printf("gave up after %d attempts", ex.Attempts)
//	}
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max retries: 3
//   - Base backoff: 500ms, doubling per attempt
//   - Backoff cap: 8 seconds
package httputil
