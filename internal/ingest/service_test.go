package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/articles"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/marketdata"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/summaries"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeeds struct {
	configured bool
	feed       *marketdata.Feed
	err        error
	calls      int
	lastLimit  int
}

func (f *fakeFeeds) Configured() bool { return f.configured }

func (f *fakeFeeds) FetchNews(_ context.Context, _ models.Day, limit int) (*marketdata.Feed, error) {
	f.calls++
	f.lastLimit = limit
	return f.feed, f.err
}

type fakeSummarizer struct {
	out   string
	err   error
	input string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.input = text
	return f.out, f.err
}

type fakeArchiver struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeArchiver) ArchiveFeed(_ context.Context, day models.Day, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := "feeds/" + day.Compact + ".json"
	f.keys = append(f.keys, key)
	return key, nil
}

func feedOf(n int) *marketdata.Feed {
	items := make([]*models.Article, n)
	for i := range items {
		items[i] = &models.Article{
			Title:         "t",
			URL:           fmt.Sprintf("https://example.com/%d", i),
			TimePublished: fmt.Sprintf("20250102T%02d0000", 23-i%24),
			Summary:       fmt.Sprintf("summary %d", i),
		}
	}
	return &marketdata.Feed{Items: items, Raw: []byte(`{"feed":[]}`)}
}

type fixture struct {
	svc   *Service
	feeds *fakeFeeds
	llm   *fakeSummarizer
	arts  *articles.Service
	sums  *summaries.Service
	runs  *MemoryRunStore
	arch  *fakeArchiver
	day   models.Day
}

func newFixture(t *testing.T, feed *marketdata.Feed) *fixture {
	t.Helper()
	f := &fixture{
		feeds: &fakeFeeds{configured: true, feed: feed},
		llm:   &fakeSummarizer{out: "Markets were mixed."},
		arts:  articles.NewService(articles.NewMemoryRepository()),
		sums:  summaries.NewService(summaries.NewMemoryRepository()),
		runs:  NewMemoryRunStore(),
		arch:  &fakeArchiver{},
	}
	f.svc = NewService(f.feeds, f.arts, f.sums, Options{Summarizer: f.llm, Archiver: f.arch, Runs: f.runs})
	day, err := models.ParseDay("20250102")
	require.NoError(t, err)
	f.day = day
	return f
}

func TestRun_StoresArticlesAndSummary(t *testing.T) {
	f := newFixture(t, feedOf(30))
	res, err := f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.Equal(t, "Markets were mixed.", res.CombinedSummary)
	assert.False(t, res.Skipped)
	assert.Equal(t, DefaultFetchLimit, f.feeds.lastLimit)

	stored, err := f.arts.ForDay(context.Background(), f.day)
	require.NoError(t, err)
	assert.Len(t, stored, DefaultArticleLimit)

	sum, err := f.sums.ForDay(context.Background(), f.day)
	require.NoError(t, err)
	assert.Equal(t, f.feeds.feed.Items[0].TimePublished, sum.Date)

	runs, _ := f.runs.Recent(context.Background(), 5)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusOK, runs[0].Status)
	assert.Equal(t, 30, runs[0].Fetched)
	assert.Equal(t, 20, runs[0].Inserted)
	assert.Equal(t, "feeds/20250102.json", runs[0].ArchiveKey)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestRun_SkipsWhenSummaryExists(t *testing.T) {
	f := newFixture(t, feedOf(3))
	_, err := f.sums.Create(context.Background(), "20250102T090000", "earlier digest")
	require.NoError(t, err)

	res, err := f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "earlier digest", res.CombinedSummary)
	assert.Equal(t, 0, f.feeds.calls)
}

func TestRun_NotConfigured(t *testing.T) {
	f := newFixture(t, feedOf(1))
	f.feeds.configured = false
	_, err := f.svc.Run(context.Background(), f.day, "test")
	assert.ErrorIs(t, err, ErrNotConfigured)

	svc := NewService(&fakeFeeds{configured: true}, f.arts, f.sums, Options{})
	_, err = svc.Run(context.Background(), f.day, "test")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRun_EmptyFeed(t *testing.T) {
	f := newFixture(t, &marketdata.Feed{})
	res, err := f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.Equal(t, "", res.CombinedSummary)
	assert.Empty(t, f.llm.input)
}

func TestRun_SummarizerFailureSavesNothing(t *testing.T) {
	f := newFixture(t, feedOf(5))
	f.llm.err = errors.New("quota")

	res, err := f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.Equal(t, "", res.CombinedSummary)

	stored, _ := f.arts.ForDay(context.Background(), f.day)
	assert.Empty(t, stored)
	_, ok, _ := f.sums.Exists(context.Background(), f.day)
	assert.False(t, ok)

	runs, _ := f.runs.Recent(context.Background(), 1)
	assert.Equal(t, StatusNoSummary, runs[0].Status)
}

func TestRun_RateLimitedDegradesToEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.feeds.err = fmt.Errorf("%w: 25 requests per day", marketdata.ErrRateLimited)

	res, err := f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.Equal(t, &Result{}, res)
	assert.Empty(t, f.llm.input)

	runs, _ := f.runs.Recent(context.Background(), 1)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusRateLimited, runs[0].Status)
	assert.Empty(t, runs[0].Error)
}

func TestRun_FetchErrorDegradesToEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.feeds.err = errors.New("alphavantage fetch: Get: connection refused")

	res, err := f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.Equal(t, "", res.CombinedSummary)

	runs, _ := f.runs.Recent(context.Background(), 1)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "alphavantage fetch: Get: connection refused", runs[0].Error)
}

// racingSummaries stores a summary during the first lookup, as a concurrent
// run finishing just before the lock is taken would.
type racingSummaries struct {
	summaries.Repository
	lookups int
}

func (r *racingSummaries) FindByDay(ctx context.Context, day models.Day) (*models.Summary, error) {
	r.lookups++
	if r.lookups == 1 {
		sum, err := r.Repository.FindByDay(ctx, day)
		_ = r.Repository.Create(ctx, &models.Summary{Date: day.Compact + "T080000", CombinedSummary: "from the other run"})
		return sum, err
	}
	return r.Repository.FindByDay(ctx, day)
}

func TestRun_RechecksSummaryAfterLock(t *testing.T) {
	f := newFixture(t, feedOf(3))
	repo := &racingSummaries{Repository: summaries.NewMemoryRepository()}
	f.sums = summaries.NewService(repo)
	f.svc = NewService(f.feeds, f.arts, f.sums, Options{Summarizer: f.llm, Runs: f.runs})

	res, err := f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "from the other run", res.CombinedSummary)
	assert.Equal(t, 2, repo.lookups)
	assert.Equal(t, 0, f.feeds.calls)
}

func TestRun_LockHeld(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	f := newFixture(t, feedOf(2))
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	f.svc.opts.Redis = client

	require.NoError(t, m.Set(lockKey(f.day), "other"))
	_, err = f.svc.Run(context.Background(), f.day, "test")
	assert.ErrorIs(t, err, ErrInProgress)

	m.Del(lockKey(f.day))
	_, err = f.svc.Run(context.Background(), f.day, "test")
	require.NoError(t, err)
	assert.False(t, m.Exists(lockKey(f.day)), "lock released after run")
}

func TestLock_ReleaseKeepsForeignLock(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	f := newFixture(t, feedOf(1))
	f.svc.opts.Redis = redis.NewClient(&redis.Options{Addr: m.Addr()})

	release, err := f.svc.lock(context.Background(), f.day)
	require.NoError(t, err)

	// our lock expired and another run took it over
	m.Del(lockKey(f.day))
	require.NoError(t, m.Set(lockKey(f.day), "other-run"))

	release()
	got, err := m.Get(lockKey(f.day))
	require.NoError(t, err)
	assert.Equal(t, "other-run", got)
}

func TestCombineSummaries(t *testing.T) {
	list := []*models.Article{{Summary: "a"}, {Summary: ""}, {Summary: "b"}}
	assert.Equal(t, "a\n\nb", CombineSummaries(list))
}

func TestRunToday_UsesUTCDay(t *testing.T) {
	f := newFixture(t, &marketdata.Feed{})
	f.svc.now = func() time.Time { return time.Date(2025, 3, 4, 23, 30, 0, 0, time.UTC) }
	assert.Equal(t, "20250304", f.svc.Today().Compact)
}
