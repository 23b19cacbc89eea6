package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EncyclopediaParser extracts body text from a rendered MediaWiki
// article body: drop navboxes/infoboxes/reference markup, keep
// paragraph/heading/list text, drop fragments under 40 characters.
type EncyclopediaParser struct {
	minWords int
}

const encyclopediaMinParagraphChars = 40

var encyclopediaDropSelectors = []string{
	"table", "div.navbox", "div.infobox", "div.reflist", "div.mw-editsection",
	"sup.reference", "span.mw-editsection", "div#toc", "div.thumb",
	"ol.references", "ul.gallery",
}

func (p *EncyclopediaParser) MinWords() int { return p.minWords }

func (p *EncyclopediaParser) Parse(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	root := doc.Find("div.mw-parser-output").First()
	if root.Length() == 0 {
		root = doc.Find("div#mw-content-text").First()
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	for _, sel := range encyclopediaDropSelectors {
		root.Find(sel).Remove()
	}

	var paragraphs []string
	root.Find("p, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, extractText(s))
	})

	return strings.Join(postprocess(paragraphs, encyclopediaMinParagraphChars), "\n")
}
