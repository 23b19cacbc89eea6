package coordinator

import (
	"context"

	"github.com/dvkuznetsov/longform-crawl/internal/config"
	"github.com/dvkuznetsov/longform-crawl/internal/parser"
	"github.com/dvkuznetsov/longform-crawl/internal/types"
	"github.com/dvkuznetsov/longform-crawl/internal/urlnorm"
)

// fetchOutcome is the per-attempt result fetchAndParse produces.
type fetchOutcome struct {
	rawHTML          string
	parsedText       string
	etag             string
	lastModified     string
	statusCode       int
	effectiveURLNorm string
}

// fetchAndParse builds conditional headers from the task's stored
// validators, performs the GET, short-circuits on 304, resolves the
// encyclopedia source's two-phase render fetch, resolves a canonical
// URL for the blog-site source, and runs the source parser.
func (w *Worker) fetchAndParse(ctx context.Context, task *types.Task) (fetchOutcome, error) {
	headers := map[string]string{}
	if etag, lastMod, ok, err := w.Docs.GetValidators(ctx, w.Source, task.URLNorm); err == nil && ok {
		if etag != "" {
			headers["If-None-Match"] = etag
		}
		if lastMod != "" {
			headers["If-Modified-Since"] = lastMod
		}
	}

	resp, err := w.Fetch.Get(ctx, task.URLNorm, headers)
	if err != nil {
		return fetchOutcome{}, &types.FetchError{URL: task.URLNorm, Err: err, Retryable: true}
	}

	if resp.StatusCode == 304 {
		return fetchOutcome{
			etag: resp.ETag, lastModified: resp.LastModified,
			statusCode: 304, effectiveURLNorm: task.URLNorm,
		}, nil
	}

	rawHTML := string(resp.Body)
	effectiveURLNorm := task.URLNorm

	// Alias/canonical resolution is carried only for the blog-site
	// source — the other two sources never publish a canonical link
	// worth following.
	if w.Source == config.SourceBlogSite {
		if canon, ok := parser.ExtractCanonical(rawHTML, task.URLNorm); ok {
			if normCanon, err := urlnorm.Normalize(canon); err == nil {
				effectiveURLNorm = normCanon
			}
		}
	}

	if w.Source == config.SourceEncyclopedia && w.WikiAPI != nil {
		title := task.MetaString("title")
		if title != "" {
			rendered, err := w.WikiAPI.FetchRenderedPage(ctx, title)
			if err != nil {
				return fetchOutcome{}, &types.ParseError{URL: task.URLNorm, Source: w.Source, Err: err}
			}
			rawHTML = rendered
		}
	}

	parsedText := w.Parser.Parse(rawHTML)

	return fetchOutcome{
		rawHTML: rawHTML, parsedText: parsedText,
		etag: resp.ETag, lastModified: resp.LastModified,
		statusCode: resp.StatusCode, effectiveURLNorm: effectiveURLNorm,
	}, nil
}
