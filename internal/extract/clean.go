package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

// newPolicy keeps article structure and drops comments, scripts, styles and
// stylesheet links.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("article", "main", "section", "div", "span", "figure", "figcaption", "header", "time")
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	p.AllowAttrs("href", "title").OnElements("a")
	return p
}

// Clean sanitizes an extracted fragment.
func Clean(fragment string) string {
	return policy.Sanitize(fragment)
}

// AbsolutizeURLs rewrites root-relative and protocol-relative src/href
// attributes against base.
func AbsolutizeURLs(fragment string, base *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	scheme := base.Scheme
	if scheme == "" {
		scheme = "https"
	}
	origin := scheme + "://" + base.Host
	for _, attr := range []string{"src", "href"} {
		doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(attr)
			switch {
			case strings.HasPrefix(v, "//"):
				s.SetAttr(attr, scheme+":"+v)
			case strings.HasPrefix(v, "/"):
				s.SetAttr(attr, origin+v)
			}
		})
	}
	out, err := doc.Find("body").Html()
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(out)
}
