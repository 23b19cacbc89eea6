package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractCanonical finds a `<link rel="canonical">` in raw HTML and
// resolves it: a protocol-relative href gets the https scheme, and a
// root-relative href is resolved against baseURL's scheme/host.
func ExtractCanonical(rawHTML, baseURL string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", false
	}

	href, ok := "", false
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !strings.Contains(rel, "canonical") {
			return true
		}
		h, exists := s.Attr("href")
		if !exists || strings.TrimSpace(h) == "" {
			return true
		}
		href = strings.TrimSpace(h)
		ok = true
		return false
	})
	if !ok {
		return "", false
	}

	if strings.HasPrefix(href, "//") {
		return "https:" + href, true
	}
	if strings.HasPrefix(href, "/") {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", false
		}
		return base.Scheme + "://" + base.Host + href, true
	}
	return href, true
}
