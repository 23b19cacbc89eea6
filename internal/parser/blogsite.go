package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BlogSiteParser extracts body text from the blog-site source:
// prefer <article> or <main>, strip chrome, keep paragraph/heading/list
// text, drop fragments under 30 characters, and drop
// Telegram-subscription spam paragraphs.
type BlogSiteParser struct {
	minWords int
}

const blogSiteMinParagraphChars = 30

var blogSiteDropSelectors = []string{"script", "style", "noscript", "header", "footer", "form", "aside"}

func (p *BlogSiteParser) MinWords() int { return p.minWords }

func (p *BlogSiteParser) Parse(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	for _, sel := range blogSiteDropSelectors {
		root.Find(sel).Remove()
	}

	var paragraphs []string
	root.Find("p, h1, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		txt := extractText(s)
		if isTelegramSpam(txt) {
			return
		}
		paragraphs = append(paragraphs, txt)
	})

	return strings.Join(postprocess(paragraphs, blogSiteMinParagraphChars), "\n")
}

// isTelegramSpam flags paragraphs nagging readers to subscribe to a
// Telegram channel: both "подпис" and "телег" present, lowercased.
func isTelegramSpam(text string) bool {
	low := strings.ToLower(text)
	return strings.Contains(low, "подпис") && strings.Contains(low, "телег")
}
