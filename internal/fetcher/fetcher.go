// Package fetcher implements the HTTP client contract: per-attempt
// timeout, bounded transport-error retry with backoff, and pass-through
// of status/headers for worker-level policy.
package fetcher

import (
	"context"
	"net/http"
)

// Response is the result of one Fetcher.Get call.
type Response struct {
	StatusCode   int
	Headers      http.Header
	Body         []byte
	FinalURL     string
	ETag         string
	LastModified string
}

// Fetcher performs a conditional GET, following redirects to a final
// response, passing 4xx/5xx through unretried (worker-level policy
// decides what to do with them).
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
	Close() error
}
