package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/dvkuznetsov/longform-crawl/internal/types"
)

// HTTPFetcher implements Fetcher using net/http. The only retry loop
// here is for transport errors; it never retries on HTTP status codes.
type HTTPFetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	logger     *slog.Logger
}

// Config configures an HTTPFetcher.
type Config struct {
	Timeout    time.Duration
	UserAgent  string
	MaxRetries int
}

// NewHTTPFetcher creates an HTTP fetcher. Compression is handled
// in-process (including brotli) so Content-Encoding negotiation is
// explicit rather than left to the transport.
func NewHTTPFetcher(cfg Config, logger *slog.Logger) *HTTPFetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	return &HTTPFetcher{
		client:     client,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		logger:     logger.With("component", "fetcher"),
	}
}

// Get performs a conditional GET with bounded transport-error retry,
// each sleep interruptible via ctx (delay = min(5s, 500ms*2^attempt)).
func (f *HTTPFetcher) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	var lastErr error

	attempts := f.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := f.doOnce(ctx, url, headers)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, &types.FetchError{URL: url, Err: err, Retryable: false}
		}

		delay := 500 * time.Millisecond * (1 << attempt)
		if delay > 5*time.Second {
			delay = 5 * time.Second
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, &types.FetchError{URL: url, Err: lastErr, Retryable: true}
}

func (f *HTTPFetcher) doOnce(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpResp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	reader, err := decompressReader(httpResp, httpResp.Body)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	finalURL := url
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	return &Response{
		StatusCode:   httpResp.StatusCode,
		Headers:      httpResp.Header,
		Body:         body,
		FinalURL:     finalURL,
		ETag:         httpResp.Header.Get("ETag"),
		LastModified: httpResp.Header.Get("Last-Modified"),
	}, nil
}

func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// decompressReader wraps a reader with the appropriate decompressor
// for gzip, deflate, and brotli (br) Content-Encoding.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableError classifies transport errors: timeouts, connection
// reset/refused, unexpected EOF. Context cancellation is never
// retryable.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNRESET) || errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return true
		}
	}
	return false
}
