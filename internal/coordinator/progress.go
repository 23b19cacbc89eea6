package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dvkuznetsov/longform-crawl/internal/store"
)

const (
	taskGroupLogCap = 12
	docGroupLogCap  = 10
)

// ProgressReporter periodically logs task/document counts grouped by
// source/state, surviving store errors.
type ProgressReporter struct {
	Tasks    store.TaskStore
	Docs     store.DocumentStore
	Interval time.Duration
	Logger   *slog.Logger
}

// Run logs one snapshot every Interval until ctx is canceled.
func (p *ProgressReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.reportOnce(ctx)
		}
	}
}

func (p *ProgressReporter) reportOnce(ctx context.Context) {
	taskGroups, err := p.Tasks.StatsBySourceAndState(ctx)
	if err != nil {
		p.Logger.Warn("stats: tasks query failed", "error", err)
	} else {
		p.Logger.Info("stats: tasks", "summary", summarizeTaskGroups(taskGroups))
	}

	docGroups, err := p.Docs.StatsBySource(ctx)
	if err != nil {
		p.Logger.Warn("stats: docs query failed", "error", err)
	} else {
		p.Logger.Info("stats: docs", "summary", summarizeDocGroups(docGroups))
	}
}

func summarizeTaskGroups(groups []store.TaskGroup) string {
	if len(groups) == 0 {
		return "no_data"
	}
	if len(groups) > taskGroupLogCap {
		groups = groups[:taskGroupLogCap]
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s:%s=%d", g.Source, g.State, g.Count)
	}
	return strings.Join(parts, " | ")
}

func summarizeDocGroups(groups []store.DocGroup) string {
	if len(groups) == 0 {
		return "no_data"
	}
	if len(groups) > docGroupLogCap {
		groups = groups[:docGroupLogCap]
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s=%d", g.Source, g.Count)
	}
	return strings.Join(parts, " | ")
}
