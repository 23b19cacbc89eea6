// Package discover implements the per-source discoverers: a BFS
// category-graph walker for the encyclopedia source, and a paginated
// listing walker (with and without the 404-stop rule) for the two
// article/blog sources.
package discover

import "context"

// Discoverer is a long-lived producer that walks a seed structure and
// upserts tasks, then exits; workers drain the queue it fills.
type Discoverer interface {
	Discover(ctx context.Context) error
}
