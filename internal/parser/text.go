package parser

import "github.com/PuerkitoBio/goquery"

// extractText joins a selection's descendant text nodes with single
// spaces, the equivalent of get_text(" ", strip=True).
func extractText(s *goquery.Selection) string {
	var out string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			out += " " + c.Text()
			return
		}
		out += " " + extractText(c)
	})
	return out
}
