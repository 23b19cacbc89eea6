// Package coordinator wires rate limiters, stores, fetchers, parsers,
// and discoverers into the running crawl: the Supervisor, per-source
// Workers, the ProgressReporter, and an optional StatusServer.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dvkuznetsov/longform-crawl/internal/config"
	"github.com/dvkuznetsov/longform-crawl/internal/discover"
	"github.com/dvkuznetsov/longform-crawl/internal/fetcher"
	"github.com/dvkuznetsov/longform-crawl/internal/parser"
	"github.com/dvkuznetsov/longform-crawl/internal/ratelimit"
	"github.com/dvkuznetsov/longform-crawl/internal/store"
)

// Supervisor starts discoverers, workers, and the progress reporter,
// and joins them on shutdown once the caller's ctx is canceled.
type Supervisor struct {
	Cfg    *config.Config
	Store  store.Store
	Fetch  fetcher.Fetcher
	Logger *slog.Logger

	registry *Registry
	status   *StatusServer
	wg       sync.WaitGroup
}

// Run starts every enabled source's discoverer and worker pool plus
// the progress reporter, then blocks until ctx is canceled, at which
// point it waits (bounded by gracePeriod) for everything to exit.
func (sp *Supervisor) Run(ctx context.Context, gracePeriod time.Duration) error {
	if err := sp.Store.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	sp.registry = NewRegistry()
	parsers := parser.NewRegistry(minWordsBySource(sp.Cfg))
	wikiAPI := parser.NewWikiAPIClient(sp.Fetch)

	for name, src := range sp.Cfg.Sources {
		if !src.Enabled {
			continue
		}
		rate := ratelimit.New(time.Duration(sp.Cfg.Logic.DelaySeconds * float64(time.Second)))

		sp.startDiscoverer(ctx, name, src, rate, wikiAPI)
		sp.startWorkers(ctx, name, src, parsers, wikiAPI, rate)
	}

	reporter := &ProgressReporter{
		Tasks:    sp.Store,
		Docs:     sp.Store,
		Interval: time.Duration(sp.Cfg.Logic.ProgressLogSeconds) * time.Second,
		Logger:   sp.Logger,
	}
	sp.wg.Add(1)
	go func() {
		defer sp.wg.Done()
		reporter.Run(ctx)
	}()

	if sp.Cfg.Logic.StatusPort != 0 {
		sp.status = &StatusServer{Tasks: sp.Store, Docs: sp.Store, Registry: sp.registry, Logger: sp.Logger}
		sp.status.Start(sp.Cfg.Logic.StatusPort)
	}

	<-ctx.Done()
	sp.Logger.Info("shutdown signal received, waiting for in-flight work", "grace_period", gracePeriod)

	done := make(chan struct{})
	go func() {
		sp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		sp.Logger.Info("all workers exited cleanly")
	case <-time.After(gracePeriod):
		sp.Logger.Warn("grace period elapsed, exiting with work still in flight")
	}

	if sp.status != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sp.status.Shutdown(shutdownCtx)
	}

	return sp.Store.Close(context.Background())
}

func (sp *Supervisor) startDiscoverer(ctx context.Context, name string, src config.SourceConfig, rate *ratelimit.Limiter, wikiAPI *parser.WikiAPIClient) {
	var d discover.Discoverer

	switch name {
	case config.SourceEncyclopedia:
		d = &discover.CategoryDiscoverer{
			Source: name, Tasks: sp.Store, API: wikiAPI, Rate: rate,
			SeedCategories: src.SeedCategories, MaxDepth: src.MaxDepth, MaxPages: src.DiscoveryMaxPages,
			Logger: sp.Logger,
		}
	case config.SourceArticleSite:
		d = &discover.ListingDiscoverer{
			Source: name, Tasks: sp.Store, Fetcher: sp.Fetch, Rate: rate,
			PageURL: discover.ArticleSitePageURL, ExtractLinks: discover.ExtractArticleSiteLinks,
			From: src.ListingPagesFrom, To: src.ListingPagesTo, StopOn404: true,
			Logger: sp.Logger,
		}
	case config.SourceBlogSite:
		d = &discover.ListingDiscoverer{
			Source: name, Tasks: sp.Store, Fetcher: sp.Fetch, Rate: rate,
			PageURL: discover.BlogSitePageURL, ExtractLinks: discover.ExtractBlogSiteLinks,
			From: src.ListingPagesFrom, To: src.ListingPagesTo, StopOn404: false,
			Logger: sp.Logger,
		}
	default:
		sp.Logger.Warn("no discoverer registered for source", "source", name)
		return
	}

	sp.wg.Add(1)
	go func() {
		defer sp.wg.Done()
		if err := d.Discover(ctx); err != nil && ctx.Err() == nil {
			sp.Logger.Warn("discoverer exited with error", "source", name, "error", err)
		}
	}()
}

func (sp *Supervisor) startWorkers(ctx context.Context, name string, src config.SourceConfig, parsers parser.Registry, wikiAPI *parser.WikiAPIClient, rate *ratelimit.Limiter) {
	p, err := parsers.Get(name)
	if err != nil {
		sp.Logger.Error("no parser registered for source", "source", name, "error", err)
		return
	}

	var api *parser.WikiAPIClient
	if name == config.SourceEncyclopedia {
		api = wikiAPI
	}

	for i := 1; i <= sp.Cfg.Logic.WorkerThreadsPerSource; i++ {
		w := &Worker{
			ID:           fmt.Sprintf("%s-w%d", config.SafeSourceName(name), i),
			Source:       name,
			Tasks:        sp.Store,
			Docs:         sp.Store,
			Fetch:        sp.Fetch,
			Parser:       p,
			WikiAPI:      api,
			Rate:         rate,
			LockTTL:      time.Duration(sp.Cfg.Logic.LockTTLSeconds) * time.Second,
			RecrawlEvery: time.Duration(sp.Cfg.Logic.RecrawlSeconds) * time.Second,
			MaxRetries:   sp.Cfg.Logic.MaxRetries,
			BackoffBase:  time.Duration(sp.Cfg.Logic.RetryBackoffBaseSeconds * float64(time.Second)),
			BackoffCap:   time.Duration(sp.Cfg.Logic.RetryBackoffMaxSeconds * float64(time.Second)),
			Registry:     sp.registry,
			Logger:       sp.Logger,
		}

		sp.wg.Add(1)
		go func() {
			defer sp.wg.Done()
			w.Run(ctx)
		}()
	}
}

func minWordsBySource(cfg *config.Config) map[string]int {
	out := make(map[string]int, len(cfg.Sources))
	for name, src := range cfg.Sources {
		out[name] = src.MinWords
	}
	return out
}
