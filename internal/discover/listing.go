package discover

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"

	"github.com/dvkuznetsov/longform-crawl/internal/fetcher"
	"github.com/dvkuznetsov/longform-crawl/internal/ratelimit"
	"github.com/dvkuznetsov/longform-crawl/internal/store"
	"github.com/dvkuznetsov/longform-crawl/internal/urlnorm"
)

// ListingDiscoveryPriority is the task priority paginated-listing
// discoverers assign.
const ListingDiscoveryPriority = 5

// LinkExtractor harvests candidate article URLs from one listing
// page's raw HTML.
type LinkExtractor func(rawHTML, listingURL string) []string

// ListingDiscoverer walks listing page indices from..to, harvesting
// and upserting article links. StopOn404 selects the article-site
// variant's three-consecutive-404 stop rule; the blog-site variant
// leaves it false.
type ListingDiscoverer struct {
	Source       string
	Tasks        store.TaskStore
	Fetcher      fetcher.Fetcher
	Rate         *ratelimit.Limiter
	PageURL      func(index int) string
	ExtractLinks LinkExtractor
	From, To     int
	StopOn404    bool
	Logger       *slog.Logger
}

func (d *ListingDiscoverer) Discover(ctx context.Context) error {
	log := d.Logger.With("source", d.Source, "component", "discoverer")
	log.Info("discovery start")

	pagesOK := 0
	linksEnqueued := 0
	consecutive404 := 0

	for i := d.From; i <= d.To; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		listingURL := d.PageURL(i)

		if err := d.Rate.Wait(ctx); err != nil {
			return err
		}
		resp, err := d.Fetcher.Get(ctx, listingURL, nil)
		if err != nil {
			log.Warn("listing fetch failed", "url", listingURL, "error", err)
			continue
		}

		if resp.StatusCode == 404 {
			consecutive404++
			log.Warn("listing 404", "url", listingURL, "consecutive", consecutive404)
			if d.StopOn404 && consecutive404 >= 3 {
				log.Info("stop: too many 404 in a row")
				break
			}
			continue
		}
		consecutive404 = 0

		if resp.StatusCode != 200 {
			log.Warn("listing bad status", "url", listingURL, "status", resp.StatusCode)
			continue
		}

		links := d.ExtractLinks(string(resp.Body), listingURL)
		for _, link := range links {
			urlNorm, err := urlnorm.Normalize(link)
			if err != nil {
				continue
			}
			if err := d.Tasks.UpsertTask(ctx, d.Source, urlNorm, time.Now(), ListingDiscoveryPriority,
				map[string]any{"listing": listingURL}); err != nil {
				log.Warn("upsert task failed", "url", urlNorm, "error", err)
				continue
			}
			linksEnqueued++
		}

		pagesOK++
		if pagesOK%5 == 0 {
			log.Info("discovery progress", "listing_pages_ok", pagesOK, "enqueued", linksEnqueued)
		}
	}

	log.Info("discovery done", "listing_pages_ok", pagesOK, "enqueued", linksEnqueued)
	return nil
}

// --- article-site (championat) link extraction ---

// championatArticleRe is the inline regex the listing walk actually
// matches hrefs against: a root-relative href is resolved against
// www.championat.com first, then tested as-is (no segment-count,
// numeric-id, or underscore-prefix checks).
var championatArticleRe = regexp.MustCompile(`(?i)^https?://(www\.)?championat\.com/football/article-\d+.*\.html$`)

// ArticleSitePageURL builds listing page i's URL for the article site.
func ArticleSitePageURL(i int) string {
	return fmt.Sprintf("https://www.championat.com/articles/football/%d.html", i)
}

// ExtractArticleSiteLinks harvests article links from a listing page:
// any href matching championatArticleRe once resolved to an absolute
// URL qualifies.
func ExtractArticleSiteLinks(rawHTML, _ string) []string {
	doc, err := htmlquery.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	for _, a := range htmlquery.Find(doc, "//a[@href]") {
		href := strings.TrimSpace(htmlquery.SelectAttr(a, "href"))
		if href == "" {
			continue
		}
		if strings.HasPrefix(href, "/") {
			href = "https://www.championat.com" + href
		}
		if !championatArticleRe.MatchString(href) {
			continue
		}

		if !seen[href] {
			seen[href] = true
			out = append(out, href)
		}
	}
	return out
}

// --- blog-site (sportsru) link extraction ---

// BlogSitePageURL builds listing page i's URL for the blog site.
func BlogSitePageURL(i int) string {
	if i == 1 {
		return "https://m.sports.ru/football/blogs/"
	}
	return fmt.Sprintf("https://m.sports.ru/football/blogs/page%d/", i)
}

// ExtractBlogSiteLinks harvests blog links from a listing page: any
// host containing sports.ru whose path contains /football/blogs/.
func ExtractBlogSiteLinks(rawHTML, _ string) []string {
	doc, err := htmlquery.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	for _, a := range htmlquery.Find(doc, "//a[@href]") {
		href := strings.TrimSpace(htmlquery.SelectAttr(a, "href"))
		if href == "" {
			continue
		}

		full := href
		if strings.HasPrefix(href, "/") {
			full = "https://m.sports.ru" + href
		}
		if !strings.Contains(full, "sports.ru") {
			continue
		}
		if !strings.Contains(full, "/football/blogs/") {
			continue
		}

		if !seen[full] {
			seen[full] = true
			out = append(out, full)
		}
	}
	return out
}
