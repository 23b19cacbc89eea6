package discover

import "testing"

func TestExtractArticleSiteLinksFiltersByRule(t *testing.T) {
	html := `<html><body>
		<a href="/football/article-123456-some-slug.html">ok, root-relative</a>
		<a href="https://www.championat.com/football/article-654321.html">ok, absolute</a>
		<a href="/articles/football/201.html">wrong path, not an article- href</a>
		<a href="/football/news-789.html">wrong path, no article- prefix</a>
		<a href="https://example.com/football/article-111.html">wrong host</a>
	</body></html>`

	got := ExtractArticleSiteLinks(html, "https://www.championat.com/articles/football/1.html")
	if len(got) != 2 {
		t.Fatalf("expected 2 qualifying links, got %d: %v", len(got), got)
	}
	want := []string{
		"https://www.championat.com/football/article-123456-some-slug.html",
		"https://www.championat.com/football/article-654321.html",
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("got[%d] = %q, want %q", i, got[i], w)
		}
	}
}

func TestExtractBlogSiteLinksFiltersByPath(t *testing.T) {
	html := `<html><body>
		<a href="/football/blogs/some-post.html">blog post</a>
		<a href="/football/news/other.html">not a blog</a>
		<a href="https://m.sports.ru/football/blogs/another.html">absolute blog</a>
	</body></html>`

	got := ExtractBlogSiteLinks(html, "https://m.sports.ru/football/blogs/")
	if len(got) != 2 {
		t.Fatalf("expected 2 qualifying links, got %d: %v", len(got), got)
	}
}

func TestArticleSitePageURL(t *testing.T) {
	got := ArticleSitePageURL(3)
	want := "https://www.championat.com/articles/football/3.html"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBlogSitePageURLFirstPage(t *testing.T) {
	if got := BlogSitePageURL(1); got != "https://m.sports.ru/football/blogs/" {
		t.Errorf("got %q", got)
	}
	if got := BlogSitePageURL(2); got != "https://m.sports.ru/football/blogs/page2/" {
		t.Errorf("got %q", got)
	}
}
