package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dvkuznetsov/longform-crawl/internal/fetcher"
)

const wikiAPI = "https://ru.wikipedia.org/w/api.php"

// CategoryMember is one row of a MediaWiki categorymembers response.
type CategoryMember struct {
	Title string `json:"title"`
}

type categoryMembersResponse struct {
	Query struct {
		CategoryMembers []CategoryMember `json:"categorymembers"`
	} `json:"query"`
	Continue struct {
		CMContinue string `json:"cmcontinue"`
	} `json:"continue"`
}

// WikiAPIClient talks to the MediaWiki category-enumeration and
// render-by-title endpoints.
type WikiAPIClient struct {
	f fetcher.Fetcher
}

func NewWikiAPIClient(f fetcher.Fetcher) *WikiAPIClient {
	return &WikiAPIClient{f: f}
}

// PageURL builds the canonical wiki article URL for a title.
func PageURL(title string) string {
	t := strings.ReplaceAll(title, " ", "_")
	return "https://ru.wikipedia.org/wiki/" + url.PathEscape(t)
}

// FetchCategoryMembers pages through cmcontinue tokens to enumerate
// all members of cmtype ("subcat" or "page") under categoryTitle. It
// stops paging once at least limit results are collected; the last
// batch is kept whole, so the result can exceed limit.
func (c *WikiAPIClient) FetchCategoryMembers(ctx context.Context, categoryTitle, cmtype string, limit int) ([]CategoryMember, error) {
	var members []CategoryMember
	cont := ""

	for {
		if err := ctx.Err(); err != nil {
			return members, err
		}

		q := url.Values{}
		q.Set("action", "query")
		q.Set("format", "json")
		q.Set("list", "categorymembers")
		q.Set("cmtitle", categoryTitle)
		q.Set("cmlimit", "500")
		q.Set("cmtype", cmtype)
		if cont != "" {
			q.Set("cmcontinue", cont)
		}

		resp, err := c.f.Get(ctx, wikiAPI+"?"+q.Encode(), nil)
		if err != nil {
			return members, err
		}
		if resp.StatusCode != 200 {
			return members, fmt.Errorf("wiki API %s: status %d", categoryTitle, resp.StatusCode)
		}

		var decoded categoryMembersResponse
		if err := json.Unmarshal(resp.Body, &decoded); err != nil {
			return members, fmt.Errorf("decode categorymembers: %w", err)
		}

		members = append(members, decoded.Query.CategoryMembers...)
		cont = decoded.Continue.CMContinue
		if cont == "" || len(members) >= limit {
			break
		}
	}
	return members, nil
}

type parseResponse struct {
	Parse struct {
		Text struct {
			Star string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
}

// FetchRenderedPage retrieves the pre-rendered HTML body for title via
// the render-by-title endpoint, wrapping it in a minimal HTML shell so
// downstream goquery parsing works unchanged.
func (c *WikiAPIClient) FetchRenderedPage(ctx context.Context, title string) (string, error) {
	q := url.Values{}
	q.Set("action", "parse")
	q.Set("format", "json")
	q.Set("page", title)
	q.Set("prop", "text")
	q.Set("disablelimitreport", "1")
	q.Set("disableeditsection", "1")

	resp, err := c.f.Get(ctx, wikiAPI+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("wiki render API %s: status %d", title, resp.StatusCode)
	}

	var decoded parseResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return "", fmt.Errorf("decode parse response: %w", err)
	}

	return "<!doctype html><html><head><meta charset=\"utf-8\"></head><body>" + decoded.Parse.Text.Star + "</body></html>", nil
}
