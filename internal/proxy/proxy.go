package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/extract"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/metrics"
)

var (
	ErrMissingURL = errors.New("missing url")
	ErrInvalidURL = errors.New("invalid url")
)

const (
	notFoundHTML = "<p>Article content not found.</p>"
	maxBody      = 10 << 20
)

var log = logger.Named("proxy")

// Page is a rendered reader view together with the upstream status.
type Page struct {
	Status int    `json:"status"`
	HTML   string `json:"html"`
}

type Service struct {
	client    *http.Client
	userAgent string
	cache     Cache
}

// NewService builds the proxy. cache may be nil.
func NewService(cfg config.ProxyConfig, cache Cache) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Service{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		cache:     cache,
	}
}

// NormalizeURL adds https:// to scheme-less input and rejects anything that
// is not http(s).
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingURL
	}
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// Fetch downloads u and renders its article body.
func (s *Service) Fetch(ctx context.Context, u *url.URL) (*Page, error) {
	key := u.String()
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, key); ok {
			metrics.ProxyCacheHits.Inc()
			return p, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ProxyRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		metrics.ProxyRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read %s: %w", u.Host, err)
	}

	fragment := extract.Extract(string(body), u)
	result := "extracted"
	if fragment == "" {
		fragment = notFoundHTML
		result = "not_found"
	}
	metrics.ProxyRequests.WithLabelValues(result).Inc()

	html, err := Render(fragment, u.Hostname())
	if err != nil {
		return nil, err
	}
	p := &Page{Status: resp.StatusCode, HTML: html}
	if s.cache != nil && result == "extracted" && resp.StatusCode < 300 {
		s.cache.Set(ctx, key, p)
	}
	return p, nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body {
      background: #f8f9fa;
      color: #212529;
      font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      line-height: 1.7;
      margin: 0;
      padding: 2rem;
      display: flex;
      justify-content: center;
    }
    article {
      background: #ffffff;
      max-width: 800px;
      width: 100%;
      box-shadow: 0 2px 10px rgba(0,0,0,0.05);
      border-radius: 12px;
      padding: 2rem 3rem;
    }
    h1, h2, h3 { color: #0d6efd; line-height: 1.3; }
    p { margin-bottom: 1.2rem; font-size: 1.05rem; }
    a { color: #0d6efd; text-decoration: none; }
    a:hover { text-decoration: underline; }
    img { max-width: 100%; border-radius: 10px; margin: 1rem 0; }
  </style>
</head>
<body>
  <article class="article-container">
    {{.Content}}
    <footer>📰 Source: {{.Host}}</footer>
  </article>
</body>
</html>`))

// Render wraps an already sanitized fragment in the reader page.
func Render(fragment, host string) (string, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Content template.HTML
		Host    string
	}{template.HTML(fragment), host})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}
