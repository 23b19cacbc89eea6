package urlnorm

import "testing"

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{
		"HTTPS://Example.COM/Foo/Bar/?b=2&a=1&utm_source=x#frag",
		"http://example.com",
		"example.com/path.html/",
		"https://example.com//a//b/",
	}
	for _, c := range cases {
		once, err := Normalize(c)
		if err != nil {
			t.Fatalf("normalize(%q): %v", c, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("normalize(normalize(%q)): %v", c, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", c, once, twice)
		}
	}
}

func TestNormalizeTrackingParamsAndOrder(t *testing.T) {
	a, err := Normalize("https://site.example/foo?utm_source=x&b=2&a=1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Normalize("https://site.example/foo?a=1&utm_campaign=y&b=2")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("expected same normalized URL regardless of tracking-param reordering, got %q vs %q", a, b)
	}
	want := "https://site.example/foo?a=1&b=2"
	if a != want {
		t.Errorf("got %q, want %q", a, want)
	}
}

func TestNormalizeTrailingSlash(t *testing.T) {
	got, err := Normalize("https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/" {
		t.Errorf("root path should keep trailing slash, got %q", got)
	}

	got, err = Normalize("https://example.com/article/")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/article" {
		t.Errorf("non-root trailing slash should be stripped, got %q", got)
	}

	got, err = Normalize("https://example.com/page.html/")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/page.html/" {
		t.Errorf(".html/ suffix should be preserved, got %q", got)
	}
}

func TestWordCount(t *testing.T) {
	got := WordCount("Hello-world, 2024; мир-труд.")
	if got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestWordCountEmpty(t *testing.T) {
	if got := WordCount(""); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}
