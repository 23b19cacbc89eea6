// Package store defines the durable TaskStore/DocumentStore contracts
// and a MongoDB-backed implementation.
package store

import (
	"context"
	"time"

	"github.com/dvkuznetsov/longform-crawl/internal/types"
)

// TaskGroup is a (source, state) count, as returned by stats queries.
type TaskGroup struct {
	Source string
	State  types.TaskState
	Count  int64
}

// DocGroup is a (source) count, as returned by stats queries.
type DocGroup struct {
	Source string
	Count  int64
}

// TaskStore is the durable queue of crawl tasks keyed by (source, url_norm).
type TaskStore interface {
	// UpsertTask inserts a queued task if absent, or updates priority and
	// meta and min-combines next_fetch_at if present. State is untouched
	// for an existing task.
	UpsertTask(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, priority int, meta map[string]any) error

	// ClaimTask atomically finds and leases the oldest eligible task for
	// source, or returns (nil, nil) if none are eligible.
	ClaimTask(ctx context.Context, source, workerID string, leaseTTL time.Duration) (*types.Task, error)

	MarkDone(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, note string) error
	MarkSkipped(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, reason string) error
	MarkError(ctx context.Context, source, urlNorm string, nextFetchAt time.Time, errMsg string, incRetry bool) error

	StatsBySourceAndState(ctx context.Context) ([]TaskGroup, error)
}

// DocumentStore is the durable map from (source, url_norm) to the
// latest fetched document.
type DocumentStore interface {
	GetContentHash(ctx context.Context, source, urlNorm string) (string, bool, error)

	// GetValidators returns the stored ETag/Last-Modified for a key, so
	// a worker can build conditional-request headers.
	GetValidators(ctx context.Context, source, urlNorm string) (etag, lastModified string, ok bool, err error)

	// UpsertDocument writes validators/fetched_at always, and raw/parsed
	// text/hash/word_count only when changed is true (a 304 or
	// same-hash refresh leaves content fields untouched).
	UpsertDocument(ctx context.Context, doc *types.Document, changed bool) error

	StatsBySource(ctx context.Context) ([]DocGroup, error)
}

// Store bundles both stores plus lifecycle, matching how the
// supervisor opens one durable backend for both concerns.
type Store interface {
	TaskStore
	DocumentStore
	EnsureIndexes(ctx context.Context) error
	Close(ctx context.Context) error
}
