package coordinator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/dvkuznetsov/longform-crawl/internal/fetcher"
	"github.com/dvkuznetsov/longform-crawl/internal/parser"
	"github.com/dvkuznetsov/longform-crawl/internal/ratelimit"
	"github.com/dvkuznetsov/longform-crawl/internal/store"
	"github.com/dvkuznetsov/longform-crawl/internal/types"
	"github.com/dvkuznetsov/longform-crawl/internal/urlnorm"
)

const claimPollInterval = 200 * time.Millisecond

// Worker runs the claim -> fetch -> parse -> store -> mark state
// machine for one source.
type Worker struct {
	ID     string
	Source string

	Tasks   store.TaskStore
	Docs    store.DocumentStore
	Fetch   fetcher.Fetcher
	Parser  parser.Parser
	WikiAPI *parser.WikiAPIClient // non-nil only for the encyclopedia source

	Rate *ratelimit.Limiter

	LockTTL      time.Duration
	RecrawlEvery time.Duration
	MaxRetries   int
	BackoffBase  time.Duration
	BackoffCap   time.Duration

	Registry *Registry // optional observational lease registry
	Logger   *slog.Logger
}

// Run executes the worker loop until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	log := w.Logger.With("source", w.Source, "worker_id", w.ID)
	log.Info("worker start")

	for {
		if ctx.Err() != nil {
			log.Info("worker stop")
			return
		}

		task, err := w.Tasks.ClaimTask(ctx, w.Source, w.ID, w.LockTTL)
		if err != nil {
			log.Warn("claim failed", "error", err)
			if !sleepInterruptible(ctx, claimPollInterval) {
				return
			}
			continue
		}
		if task == nil {
			if !sleepInterruptible(ctx, claimPollInterval) {
				return
			}
			continue
		}

		if w.Registry != nil {
			w.Registry.MarkClaimed(w.ID, w.Source, task.URLNorm)
		}
		w.processTask(ctx, task, log)
		if w.Registry != nil {
			w.Registry.MarkIdle(w.ID)
		}
	}
}

func (w *Worker) processTask(ctx context.Context, task *types.Task, log *slog.Logger) {
	if err := w.Rate.Wait(ctx); err != nil {
		return
	}

	fetchedAt := time.Now()
	outcome, err := w.fetchAndParse(ctx, task)
	if err != nil {
		w.handleFailure(ctx, task, err, log)
		return
	}

	if outcome.effectiveURLNorm != task.URLNorm {
		if err := w.Tasks.UpsertTask(ctx, w.Source, outcome.effectiveURLNorm, time.Now(), task.Priority, task.Meta); err != nil {
			log.Warn("upsert canonical task failed", "error", err)
		}
		note := fmt.Sprintf("alias->canonical %s", outcome.effectiveURLNorm)
		if err := w.Tasks.MarkDone(ctx, w.Source, task.URLNorm, fetchedAt.Add(w.RecrawlEvery), note); err != nil {
			log.Warn("mark alias done failed", "error", err)
		}
		log.Info("alias resolved", "from", task.URLNorm, "to", outcome.effectiveURLNorm)
		return
	}

	if outcome.statusCode == 304 {
		doc := &types.Document{
			Source: w.Source, URLNorm: task.URLNorm,
			HTTPETag: outcome.etag, HTTPLastModified: outcome.lastModified,
			StatusCode: outcome.statusCode, FetchedAt: fetchedAt,
		}
		if err := w.Docs.UpsertDocument(ctx, doc, false); err != nil {
			log.Warn("upsert validators failed", "error", err)
		}
		if err := w.Tasks.MarkDone(ctx, w.Source, task.URLNorm, fetchedAt.Add(w.RecrawlEvery), "304 not modified"); err != nil {
			log.Warn("mark done failed", "error", err)
		}
		log.Info("fetch ok", "status", 304, "note", "304 not modified")
		return
	}

	wordCount := urlnorm.WordCount(outcome.parsedText)
	if wordCount < w.Parser.MinWords() {
		reason := fmt.Sprintf("too_short words=%d", wordCount)
		if err := w.Tasks.MarkSkipped(ctx, w.Source, task.URLNorm, fetchedAt.Add(w.RecrawlEvery), reason); err != nil {
			log.Warn("mark skipped failed", "error", err)
		}
		log.Info("skip", "words", wordCount, "min_words", w.Parser.MinWords())
		return
	}

	newHash := sha256Hex(outcome.parsedText)
	oldHash, _, err := w.Docs.GetContentHash(ctx, w.Source, task.URLNorm)
	if err != nil {
		log.Warn("get content hash failed", "error", err)
	}
	changed := oldHash != newHash

	doc := &types.Document{
		Source: w.Source, URLNorm: task.URLNorm,
		RawPayload: outcome.rawHTML, ParsedText: outcome.parsedText, ContentHash: newHash,
		HTTPETag: outcome.etag, HTTPLastModified: outcome.lastModified,
		StatusCode: outcome.statusCode, WordCount: wordCount, FetchedAt: fetchedAt,
	}
	if err := w.Docs.UpsertDocument(ctx, doc, changed); err != nil {
		w.handleFailure(ctx, task, err, log)
		return
	}

	note := "same_hash"
	if changed {
		note = "updated"
	}
	if err := w.Tasks.MarkDone(ctx, w.Source, task.URLNorm, fetchedAt.Add(w.RecrawlEvery), note); err != nil {
		log.Warn("mark done failed", "error", err)
		return
	}
	log.Info("fetch ok", "status", outcome.statusCode, "words", wordCount, "note", note)
}

// handleFailure computes the exponential backoff, marks the task as
// errored, and — once the post-increment retry count reaches
// MaxRetries — parks it at the backoff cap without a further
// retry-count increment.
func (w *Worker) handleFailure(ctx context.Context, task *types.Task, cause error, log *slog.Logger) {
	delay := computeRetryDelay(task.Retries, w.BackoffBase, w.BackoffCap)
	next := time.Now().Add(delay)
	if err := w.Tasks.MarkError(ctx, w.Source, task.URLNorm, next, cause.Error(), true); err != nil {
		log.Warn("mark error failed", "error", err)
	}
	log.Warn("fetch/parse failed", "retry_in", delay, "error", cause)

	if task.Retries+1 >= w.MaxRetries {
		parkAt := time.Now().Add(w.BackoffCap)
		msg := fmt.Sprintf("max_retries reached: %s", cause.Error())
		if err := w.Tasks.MarkError(ctx, w.Source, task.URLNorm, parkAt, msg, false); err != nil {
			log.Warn("park task failed", "error", err)
		}
		log.Warn("max retries reached, task parked")
	}
}

// computeRetryDelay implements delay = min(backoffCap, base * 2^retries).
func computeRetryDelay(retries int, base, backoffCap time.Duration) time.Duration {
	if retries < 0 {
		retries = 0
	}
	delay := base
	for i := 0; i < retries; i++ {
		delay *= 2
		if delay >= backoffCap {
			return backoffCap
		}
	}
	if delay > backoffCap {
		return backoffCap
	}
	return delay
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// sleepInterruptible sleeps d or returns false early if ctx is done.
func sleepInterruptible(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
