package parser

import "testing"

func TestEncyclopediaParserDropsBoilerplate(t *testing.T) {
	html := `<html><body><div class="mw-parser-output">
		<table><tr><td>nav table junk</td></tr></table>
		<p>This is a long enough paragraph about the subject to survive.</p>
		<p>short</p>
	</div></body></html>`

	p := &EncyclopediaParser{minWords: 1}
	got := p.Parse(html)
	if got == "" {
		t.Fatal("expected non-empty parsed text")
	}
	if containsSubstr(got, "nav table junk") {
		t.Error("table content should have been dropped")
	}
	if containsSubstr(got, "short") {
		t.Error("fragment under 40 chars should have been dropped")
	}
}

func TestArticleSiteParserPrefersArticleTag(t *testing.T) {
	html := `<html><body>
		<header>site chrome nav links here not article body</header>
		<article><p>This article paragraph is definitely long enough to pass the filter.</p></article>
	</body></html>`

	p := &ArticleSiteParser{minWords: 1}
	got := p.Parse(html)
	if containsSubstr(got, "site chrome") {
		t.Error("header content should have been excluded")
	}
	if !containsSubstr(got, "article paragraph") {
		t.Error("expected article body text in output")
	}
}

func TestBlogSiteParserDropsTelegramSpam(t *testing.T) {
	html := `<html><body><article>
		<p>Подпишитесь на наш канал в Телеграме прямо сейчас и получайте новости первыми каждый день.</p>
		<p>This is a genuine blog paragraph long enough to pass the thirty char filter easily.</p>
	</article></body></html>`

	p := &BlogSiteParser{minWords: 1}
	got := p.Parse(html)
	if containsSubstr(got, "Подпишитесь") {
		t.Error("telegram subscription spam should have been dropped")
	}
	if !containsSubstr(got, "genuine blog paragraph") {
		t.Error("expected the real paragraph in output")
	}
}

func TestPostprocessDedup(t *testing.T) {
	in := []string{"Hello World", "hello world", "A genuinely distinct paragraph of meaningful length here."}
	out := postprocess(in, 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 deduped paragraphs, got %d: %v", len(out), out)
	}
}

func TestExtractCanonicalResolvesRootRelative(t *testing.T) {
	html := `<html><head><link rel="canonical" href="/foo/bar"></head></html>`
	got, ok := ExtractCanonical(html, "https://example.com/other")
	if !ok {
		t.Fatal("expected canonical link to be found")
	}
	if got != "https://example.com/foo/bar" {
		t.Errorf("got %q", got)
	}
}

func TestExtractCanonicalAbsent(t *testing.T) {
	_, ok := ExtractCanonical(`<html><head></head></html>`, "https://example.com/")
	if ok {
		t.Error("expected no canonical link to be found")
	}
}

func containsSubstr(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
