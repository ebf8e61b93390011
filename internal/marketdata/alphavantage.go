package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
)

var (
	ErrNoAPIKey = errors.New("alpha vantage api key not configured")
	// ErrRateLimited is returned when the API answers with an Information or
	// Note message instead of a feed.
	ErrRateLimited = errors.New("alpha vantage rate limited")
)

const defaultLimit = 50

// Feed is the decoded NEWS_SENTIMENT response plus the raw payload.
type Feed struct {
	Items []*models.Article
	Raw   []byte
}

type feedResponse struct {
	Items       []*models.Article `json:"feed"`
	Information string            `json:"Information"`
	Note        string            `json:"Note"`
}

// Client queries the Alpha Vantage NEWS_SENTIMENT endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	topics     string
	httpClient *http.Client
}

func NewClient(c config.AlphaVantageConfig) *Client {
	return &Client{
		apiKey:     c.APIKey,
		baseURL:    c.BaseURL,
		topics:     c.Topics,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool { return c.apiKey != "" }

// FetchNews returns the articles published on day, newest first.
func (c *Client) FetchNews(ctx context.Context, day models.Day, limit int) (*Feed, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	if c.topics != "" {
		q.Set("topics", c.topics)
	}
	q.Set("time_from", day.Compact+"T0000")
	q.Set("time_to", day.Compact+"T2359")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sort", "LATEST")
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", stripURL(err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", stripURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage fetch: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read: %w", err)
	}

	var fr feedResponse
	if err := json.Unmarshal(raw, &fr); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if len(fr.Items) == 0 {
		if msg := fr.Information + fr.Note; msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, msg)
		}
	}
	return &Feed{Items: fr.Items, Raw: raw}, nil
}

// stripURL drops the request URL, which carries the api key, from transport
// errors.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
