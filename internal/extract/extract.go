// Package extract pulls the readable article body out of a news page.
//
// Matching is a heuristic over the raw markup: the opening element is found
// with a pattern on its id, class or tag name and its end by counting nested
// open and close tags of the same name. It is not an HTML parser and will
// misjudge self-closing or malformed markup.
package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
)

// Strategy is one way of locating the article element.
type Strategy struct {
	Kind  string // "id", "class", "tag" or "paragraphs"
	Value string
}

func byID(v string) Strategy    { return Strategy{Kind: "id", Value: v} }
func byClass(v string) Strategy { return Strategy{Kind: "class", Value: v} }
func byTag(v string) Strategy   { return Strategy{Kind: "tag", Value: v} }

var paragraphs = Strategy{Kind: "paragraphs"}

type domainRule struct {
	host       string
	strategies []Strategy
}

var domainRules = []domainRule{
	{"benzinga.com", []Strategy{byID("article-body"), byClass("article-body"), byTag("article")}},
	{"fool.com", []Strategy{byClass("article-body"), byTag("article")}},
	{"reuters.com", []Strategy{byTag("main"), byTag("article")}},
	{"bloomberg.com", []Strategy{byClass("body__inner-container"), byTag("article")}},
}

var defaultStrategies = []Strategy{byTag("main"), byTag("article"), paragraphs}

// StrategiesFor returns the ordered strategies for a hostname.
func StrategiesFor(host string) []Strategy {
	host = strings.ToLower(host)
	for _, r := range domainRules {
		if strings.Contains(host, r.host) {
			return r.strategies
		}
	}
	return defaultStrategies
}

// Extract returns the cleaned article fragment for a page fetched from
// pageURL, or "" when nothing usable was found.
func Extract(html string, pageURL *url.URL) string {
	strategies := StrategiesFor(pageURL.Hostname())
	frag := ""
	for _, s := range strategies {
		if frag = apply(html, s); frag != "" {
			break
		}
	}
	// readability only backs up the generic chain
	if frag == "" && sameChain(strategies, defaultStrategies) {
		frag = readable(html, pageURL)
	}
	if frag == "" {
		return ""
	}
	return AbsolutizeURLs(Clean(frag), pageURL)
}

func sameChain(a, b []Strategy) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func apply(html string, s Strategy) string {
	switch s.Kind {
	case "id":
		return ByID(html, s.Value)
	case "class":
		return ByClass(html, s.Value)
	case "tag":
		return ByTag(html, s.Value)
	case "paragraphs":
		return Paragraphs(html)
	}
	return ""
}

// ByID extracts the first element whose id equals id.
func ByID(html, id string) string {
	re := regexp.MustCompile(`(?i)<([a-zA-Z0-9-]+)(?:\s[^>]*)?\bid\s*=\s*["']` + regexp.QuoteMeta(id) + `["'][^>]*>`)
	return byPattern(html, re)
}

// ByClass extracts the first element carrying class name.
func ByClass(html, name string) string {
	re := regexp.MustCompile(`(?i)<([a-zA-Z0-9-]+)(?:\s[^>]*)?\bclass\s*=\s*["'][^"']*\b` + regexp.QuoteMeta(name) + `\b[^"']*["'][^>]*>`)
	return byPattern(html, re)
}

func byPattern(html string, re *regexp.Regexp) string {
	m := re.FindStringSubmatchIndex(html)
	if m == nil {
		return ""
	}
	tag := html[m[2]:m[3]]
	return elementAt(html, m[0], m[1], tag)
}

// ByTag extracts the first <tag> element.
func ByTag(html, tag string) string {
	re := regexp.MustCompile(`(?i)<` + regexp.QuoteMeta(tag) + `(\s|>)`)
	loc := re.FindStringIndex(html)
	if loc == nil {
		return ""
	}
	end := strings.IndexByte(html[loc[0]:], '>')
	return elementAt(html, loc[0], loc[0]+end+1, tag)
}

// elementAt returns html[start:close] where close is the end of the tag
// balancing the opening tag that ends at openEnd. Without a balancing close
// tag the element runs to the end of input.
func elementAt(html string, start, openEnd int, tag string) string {
	openSeq := "<" + tag
	closeSeq := "</" + tag + ">"
	pos, depth := openEnd, 1
	for depth > 0 {
		nextClose := strings.Index(html[pos:], closeSeq)
		if nextClose < 0 {
			pos = len(html)
			break
		}
		nextClose += pos
		nextOpen := strings.Index(html[pos:], openSeq)
		if nextOpen >= 0 && nextOpen+pos < nextClose {
			depth++
			pos = nextOpen + pos + len(openSeq)
			continue
		}
		depth--
		pos = nextClose + len(closeSeq)
	}
	return html[start:pos]
}

var paragraphRe = regexp.MustCompile(`(?is)<p[^>]*>.*?</p>`)

// Paragraphs joins every <p> element in the page.
func Paragraphs(html string) string {
	return strings.Join(paragraphRe.FindAllString(html, -1), "\n")
}

// minReadableText is the shortest readability result worth showing.
const minReadableText = 140

func readable(html string, pageURL *url.URL) string {
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return ""
	}
	var text strings.Builder
	if err := article.RenderText(&text); err != nil || len(strings.TrimSpace(text.String())) < minReadableText {
		return ""
	}
	var buf bytes.Buffer
	if err := article.RenderHTML(&buf); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}
