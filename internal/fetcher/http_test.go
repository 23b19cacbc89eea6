package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHTTPFetcherGetPassesThroughStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Config{Timeout: 5 * time.Second, UserAgent: "test", MaxRetries: 1}, testLogger())
	defer f.Close()

	resp, err := f.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("got status %d, want 304", resp.StatusCode)
	}
	if resp.ETag != `"abc"` {
		t.Errorf("got etag %q", resp.ETag)
	}
}

func TestHTTPFetcherDoesNotRetry5xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Config{Timeout: 5 * time.Second, UserAgent: "test", MaxRetries: 3}, testLogger())
	defer f.Close()

	resp, err := f.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", resp.StatusCode)
	}
	if calls != 1 {
		t.Errorf("fetcher should not retry HTTP status codes, got %d calls", calls)
	}
}

func TestHTTPFetcherForwardsConditionalHeaders(t *testing.T) {
	var gotIfNoneMatch string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfNoneMatch = r.Header.Get("If-None-Match")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Config{Timeout: 5 * time.Second, UserAgent: "test", MaxRetries: 1}, testLogger())
	defer f.Close()

	_, err := f.Get(context.Background(), srv.URL, map[string]string{"If-None-Match": `"xyz"`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotIfNoneMatch != `"xyz"` {
		t.Errorf("got If-None-Match %q, want %q", gotIfNoneMatch, `"xyz"`)
	}
}
