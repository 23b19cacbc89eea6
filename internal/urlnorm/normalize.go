// Package urlnorm normalizes URLs to the canonical form used as a task
// and document key, and tokenizes text for word counts.
package urlnorm

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var trackingExact = map[string]bool{
	"gclid":  true,
	"yclid":  true,
	"fbclid": true,
	"mc_cid": true,
	"mc_eid": true,
}

func isTrackingParam(name string) bool {
	if strings.HasPrefix(name, "utm_") {
		return true
	}
	return trackingExact[name]
}

// repeatSlash matches runs of repeated path separators, collapsed to one.
var repeatSlash = regexp.MustCompile(`/{2,}`)

// Normalize canonicalizes a URL per the rules:
// scheme/host lowercased, empty scheme defaults to https, empty path
// defaults to "/", fragment stripped, repeated slashes collapsed,
// trailing slash removed unless path is "/" or ends in ".html/",
// tracking query params removed, remaining params sorted by (name, value).
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	path := u.Path
	if path == "" {
		path = "/"
	}
	path = repeatSlash.ReplaceAllString(path, "/")
	if path != "/" && !strings.HasSuffix(path, ".html/") && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	u.Path = path

	if u.RawQuery != "" {
		q := u.Query()
		for name := range q {
			if isTrackingParam(name) {
				q.Del(name)
			}
		}
		u.RawQuery = encodeSorted(q)
	}

	return u.String(), nil
}

// encodeSorted re-encodes query values sorted lexicographically by
// (name, value); blank values are preserved.
func encodeSorted(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	type pair struct{ k, v string }
	var pairs []pair
	for k, vs := range q {
		for _, v := range vs {
			pairs = append(pairs, pair{k, v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.v))
	}
	return b.String()
}

// tokenRe matches Latin/Cyrillic word tokens, allowing a single internal
// hyphen, for word-count purposes.
var tokenRe = regexp.MustCompile(`[A-Za-zА-Яа-яЁё0-9]+(?:-[A-Za-zА-Яа-яЁё0-9]+)?`)

// WordCount counts tokens matching the crawler's tokenization rule.
func WordCount(text string) int {
	return len(tokenRe.FindAllString(text, -1))
}
