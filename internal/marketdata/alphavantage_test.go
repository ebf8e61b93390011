package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{
  "items": "2",
  "feed": [
    {
      "title": "Stocks rally on rate hopes",
      "url": "https://www.benzinga.com/news/1",
      "time_published": "20250102T153000",
      "authors": ["Jane Doe"],
      "summary": "Equities rose.",
      "banner_image": "https://img/1.png",
      "source": "Benzinga",
      "category_within_source": "News",
      "source_domain": "www.benzinga.com",
      "topics": [{"topic": "Financial Markets", "relevance_score": "0.99"}],
      "overall_sentiment_score": 0.21,
      "overall_sentiment_label": "Somewhat-Bullish",
      "ticker_sentiment": [{"ticker": "AAPL", "relevance_score": "0.5", "ticker_sentiment_score": "0.3", "ticker_sentiment_label": "Bullish"}]
    },
    {
      "title": "Oil slips",
      "url": "https://www.reuters.com/2",
      "time_published": "20250102T101500",
      "authors": [],
      "summary": "",
      "source": "Reuters",
      "topics": [],
      "overall_sentiment_score": -0.1,
      "overall_sentiment_label": "Neutral",
      "ticker_sentiment": []
    }
  ]
}`

func client(url string) *Client {
	return NewClient(config.AlphaVantageConfig{APIKey: "k", BaseURL: url, Topics: "financial_markets"})
}

func TestFetchNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "NEWS_SENTIMENT", q.Get("function"))
		assert.Equal(t, "financial_markets", q.Get("topics"))
		assert.Equal(t, "20250102T0000", q.Get("time_from"))
		assert.Equal(t, "20250102T2359", q.Get("time_to"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "LATEST", q.Get("sort"))
		assert.Equal(t, "k", q.Get("apikey"))
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	day, err := models.ParseDay("20250102")
	require.NoError(t, err)
	feed, err := client(srv.URL).FetchNews(context.Background(), day, 0)
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)

	a := feed.Items[0]
	assert.Equal(t, "Stocks rally on rate hopes", a.Title)
	assert.Equal(t, []string{"Jane Doe"}, a.Authors)
	assert.InDelta(t, 0.21, a.OverallSentimentScore, 1e-9)
	assert.Equal(t, "AAPL", a.TickerSentiment[0].Ticker)
	assert.Equal(t, "0.99", a.Topics[0].RelevanceScore)
	assert.JSONEq(t, sampleFeed, string(feed.Raw))
}

func TestFetchNews_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Information": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer srv.Close()

	day, _ := models.ParseDay("20250102")
	_, err := client(srv.URL).FetchNews(context.Background(), day, 10)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestFetchNews_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": "0", "feed": []}`))
	}))
	defer srv.Close()

	day, _ := models.ParseDay("20250102")
	feed, err := client(srv.URL).FetchNews(context.Background(), day, 10)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}

func TestFetchNews_Errors(t *testing.T) {
	day, _ := models.ParseDay("20250102")

	_, err := NewClient(config.AlphaVantageConfig{}).FetchNews(context.Background(), day, 1)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err = client(srv.URL).FetchNews(context.Background(), day, 1)
	assert.Error(t, err)
}

func TestFetchNews_TransportErrorHidesKey(t *testing.T) {
	day, _ := models.ParseDay("20250102")
	c := NewClient(config.AlphaVantageConfig{APIKey: "SECRETKEY123", BaseURL: "http://127.0.0.1:1/query"})

	_, err := c.FetchNews(context.Background(), day, 1)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
	assert.NotContains(t, err.Error(), "apikey")
	assert.Contains(t, err.Error(), "alphavantage fetch")
}
