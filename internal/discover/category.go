package discover

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dvkuznetsov/longform-crawl/internal/parser"
	"github.com/dvkuznetsov/longform-crawl/internal/ratelimit"
	"github.com/dvkuznetsov/longform-crawl/internal/store"
	"github.com/dvkuznetsov/longform-crawl/internal/urlnorm"
)

// CategoryDiscoveryPriority is the task priority the category-graph
// discoverer assigns the richer encyclopedia source.
const CategoryDiscoveryPriority = 10

const categoryPrefix = "Категория:"

type categoryQueueItem struct {
	depth int
	title string
}

// CategoryDiscoverer performs a breadth-first walk of the encyclopedia
// source's category graph: a visited-category set breaks cycles,
// max_depth bounds traversal, and max_pages ends discovery early.
type CategoryDiscoverer struct {
	Source         string
	Tasks          store.TaskStore
	API            *parser.WikiAPIClient
	Rate           *ratelimit.Limiter
	SeedCategories []string
	MaxDepth       int
	MaxPages       int
	Logger         *slog.Logger
}

func (d *CategoryDiscoverer) Discover(ctx context.Context) error {
	log := d.Logger.With("source", d.Source, "component", "discoverer")
	log.Info("discovery start")

	seen := make(map[string]bool)
	var queue []categoryQueueItem
	for _, c := range d.SeedCategories {
		if !strings.HasPrefix(c, categoryPrefix) {
			c = categoryPrefix + c
		}
		queue = append(queue, categoryQueueItem{depth: 0, title: c})
	}

	pagesEnqueued := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := queue[0]
		queue = queue[1:]

		if seen[item.title] {
			continue
		}
		seen[item.title] = true
		if item.depth > d.MaxDepth {
			continue
		}

		if err := d.Rate.Wait(ctx); err != nil {
			return err
		}
		subcats, err := d.API.FetchCategoryMembers(ctx, item.title, "subcat", 5000)
		if err != nil {
			log.Warn("subcat fetch failed", "category", item.title, "error", err)
		} else {
			for _, sc := range subcats {
				if sc.Title != "" && !seen[sc.Title] {
					queue = append(queue, categoryQueueItem{depth: item.depth + 1, title: sc.Title})
				}
			}
		}

		if err := d.Rate.Wait(ctx); err != nil {
			return err
		}
		pages, err := d.API.FetchCategoryMembers(ctx, item.title, "page", 5000)
		if err != nil {
			log.Warn("page fetch failed", "category", item.title, "error", err)
			continue
		}

		for _, p := range pages {
			if p.Title == "" {
				continue
			}
			urlNorm, err := urlnorm.Normalize(parser.PageURL(p.Title))
			if err != nil {
				continue
			}
			if err := d.Tasks.UpsertTask(ctx, d.Source, urlNorm, time.Now(), CategoryDiscoveryPriority,
				map[string]any{"title": p.Title}); err != nil {
				log.Warn("upsert task failed", "url", urlNorm, "error", err)
				continue
			}
			pagesEnqueued++
			if pagesEnqueued%500 == 0 {
				log.Info("discovery progress", "enqueued", pagesEnqueued)
			}
			if pagesEnqueued >= d.MaxPages {
				log.Info("discovery reached max_pages", "max_pages", d.MaxPages)
				return nil
			}
		}
	}

	log.Info("discovery done", "enqueued", pagesEnqueued, "categories_visited", len(seen))
	return nil
}
