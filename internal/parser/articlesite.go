package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ArticleSiteParser extracts body text from the article-site source:
// prefer <article> or [itemprop=articleBody], strip script/style/
// noscript/header/footer/form/aside chrome, keep paragraph/heading/list
// text, drop fragments under 40 characters.
type ArticleSiteParser struct {
	minWords int
}

const articleSiteMinParagraphChars = 40

var articleSiteDropSelectors = []string{"script", "style", "noscript", "header", "footer", "form", "aside"}

func (p *ArticleSiteParser) MinWords() int { return p.minWords }

func (p *ArticleSiteParser) Parse(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find(`[itemprop="articleBody"]`).First()
	}
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	for _, sel := range articleSiteDropSelectors {
		root.Find(sel).Remove()
	}

	var paragraphs []string
	root.Find("p, h1, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, extractText(s))
	})

	return strings.Join(postprocess(paragraphs, articleSiteMinParagraphChars), "\n")
}
