package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	u, err := NormalizeURL("www.example.com/a?b=1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/a?b=1", u.String())

	u, err = NormalizeURL("http://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)

	_, err = NormalizeURL("  ")
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = NormalizeURL("httpfoo://bar")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestRender_EscapesHost(t *testing.T) {
	out, err := Render("<p>body</p>", "<evil>.com")
	require.NoError(t, err)
	assert.Contains(t, out, "<p>body</p>")
	assert.Contains(t, out, "📰 Source: &lt;evil&gt;.com")
	assert.Contains(t, out, `<article class="article-container">`)
}

func upstream(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func cfg() config.ProxyConfig {
	return config.ProxyConfig{Timeout: 5 * time.Second, UserAgent: "Mozilla/5.0 test"}
}

func TestFetch_ExtractsAndCaches(t *testing.T) {
	var hits int32
	srv := upstream(t, http.StatusOK, `<html><body><main><p>Rates held.</p><img src="/a.png"></main></body></html>`, &hits)
	defer srv.Close()

	s := NewService(cfg(), NewMemoryCache(8, time.Minute))
	u, _ := url.Parse(srv.URL + "/story")

	p, err := s.Fetch(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.HTML, "Rates held.")
	assert.Contains(t, p.HTML, `src="`+srv.URL+`/a.png"`)
	assert.Contains(t, p.HTML, "Source: 127.0.0.1")

	_, err = s.Fetch(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second fetch served from cache")
}

func TestFetch_NotFoundMirrorsStatus(t *testing.T) {
	var hits int32
	srv := upstream(t, http.StatusNotFound, `<html><body><div>nothing here</div></body></html>`, &hits)
	defer srv.Close()

	s := NewService(cfg(), NewMemoryCache(8, time.Minute))
	u, _ := url.Parse(srv.URL)
	p, err := s.Fetch(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Contains(t, p.HTML, "<p>Article content not found.</p>")

	_, _ = s.Fetch(context.Background(), u)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "misses are not cached")
}

func TestFetch_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(srv.URL)
	srv.Close()

	_, err := NewService(cfg(), nil).Fetch(context.Background(), u)
	assert.Error(t, err)
}

func TestRedisCache(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: m.Addr()}), time.Minute)
	ctx := context.Background()
	_, ok := c.Get(ctx, "https://a.com/x")
	assert.False(t, ok)

	c.Set(ctx, "https://a.com/x", &Page{Status: 200, HTML: "<p>x</p>"})
	p, ok := c.Get(ctx, "https://a.com/x")
	require.True(t, ok)
	assert.Equal(t, "<p>x</p>", p.HTML)
	assert.Equal(t, time.Minute, m.TTL(cacheKey("https://a.com/x")))
}

func TestMemoryCache_Expires(t *testing.T) {
	c := NewMemoryCache(2, 20*time.Millisecond)
	c.Set(context.Background(), "k", &Page{Status: 200})
	_, ok := c.Get(context.Background(), "k")
	assert.True(t, ok)
	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get(context.Background(), "k")
	assert.False(t, ok)
}
