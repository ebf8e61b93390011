package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/articles"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/llm"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/marketdata"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/summaries"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotConfigured = errors.New("API keys not configured")
	ErrInProgress    = errors.New("ingestion already running for this day")
)

const (
	DefaultFetchLimit   = 50
	DefaultArticleLimit = 20
	lockTTL             = 10 * time.Minute
)

var log = logger.Named("ingest")

// Feeds is the market-data source.
type Feeds interface {
	Configured() bool
	FetchNews(ctx context.Context, day models.Day, limit int) (*marketdata.Feed, error)
}

// Archiver stores raw feed payloads.
type Archiver interface {
	ArchiveFeed(ctx context.Context, day models.Day, raw []byte) (string, error)
}

// Result is what POST /api/articles answers with.
type Result struct {
	CombinedSummary string `json:"combined_summary"`
	Skipped         bool   `json:"skipped,omitempty"`
}

type Options struct {
	FetchLimit   int
	ArticleLimit int
	Summarizer   llm.Summarizer
	Archiver     Archiver
	Runs         RunStore
	// Redis enables the per-day ingestion lock.
	Redis *redis.Client
}

type Service struct {
	feeds     Feeds
	articles  *articles.Service
	summaries *summaries.Service
	opts      Options
	now       func() time.Time
}

func NewService(feeds Feeds, a *articles.Service, s *summaries.Service, opts Options) *Service {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	if opts.ArticleLimit <= 0 {
		opts.ArticleLimit = DefaultArticleLimit
	}
	return &Service{
		feeds:     feeds,
		articles:  a,
		summaries: s,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Configured() bool {
	return s.feeds != nil && s.feeds.Configured() && s.opts.Summarizer != nil
}

// Today is the current UTC day.
func (s *Service) Today() models.Day { return models.DayOf(s.now()) }

// RunToday ingests the current UTC day.
func (s *Service) RunToday(ctx context.Context, trigger string) (*Result, error) {
	return s.Run(ctx, s.Today(), trigger)
}

// Run fetches the day's news, summarises it and stores articles plus summary.
// A day that already has a summary is not fetched again.
func (s *Service) Run(ctx context.Context, day models.Day, trigger string) (*Result, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	if res, err := s.existing(ctx, day); res != nil || err != nil {
		return res, err
	}

	release, err := s.lock(ctx, day)
	if err != nil {
		return nil, err
	}
	defer release()

	// another run may have stored the summary while we waited for the lock
	if res, err := s.existing(ctx, day); res != nil || err != nil {
		return res, err
	}

	run := &Run{RunID: uuid.NewString(), Day: day.Compact, Trigger: trigger, Status: StatusRunning, StartedAt: s.now()}
	s.saveRun(ctx, run)

	res, err := s.ingest(ctx, day, run)
	finished := s.now()
	run.FinishedAt = &finished
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	}
	s.saveRun(ctx, run)
	metrics.IngestRuns.WithLabelValues(run.Status).Inc()
	return res, err
}

func (s *Service) ingest(ctx context.Context, day models.Day, run *Run) (*Result, error) {
	log.Infof("fetching news for %s", day)
	feed, err := s.feeds.FetchNews(ctx, day, s.opts.FetchLimit)
	switch {
	case errors.Is(err, marketdata.ErrRateLimited):
		log.Warnf("news feed for %s: %v", day, err)
		run.Status = StatusRateLimited
		return &Result{}, nil
	case err != nil:
		log.Errorf("news feed for %s: %v", day, err)
		run.Status = StatusFailed
		run.Error = err.Error()
		return &Result{}, nil
	}
	run.Fetched = len(feed.Items)
	if s.opts.Archiver != nil && len(feed.Raw) > 0 {
		if key, err := s.opts.Archiver.ArchiveFeed(ctx, day, feed.Raw); err != nil {
			log.Warnf("archive feed: %v", err)
		} else {
			run.ArchiveKey = key
		}
	}
	if len(feed.Items) == 0 {
		log.Infof("no articles in feed for %s", day)
		run.Status = StatusEmpty
		return &Result{}, nil
	}

	list := feed.Items
	if len(list) > s.opts.ArticleLimit {
		list = list[:s.opts.ArticleLimit]
	}

	combined := CombineSummaries(list)
	var digest string
	if strings.TrimSpace(combined) != "" {
		digest, err = s.opts.Summarizer.Summarize(ctx, combined)
		if err != nil {
			log.Errorf("summarize: %v", err)
			digest = ""
		}
	} else {
		log.Warnf("no article summaries to send for %s", day)
	}
	if strings.TrimSpace(digest) == "" {
		run.Status = StatusNoSummary
		return &Result{}, nil
	}

	inserted, err := s.articles.Save(ctx, list)
	if err != nil {
		log.Errorf("save articles: %v", err)
	}
	run.Inserted = inserted
	metrics.ArticlesIngested.Add(float64(inserted))

	if _, err := s.summaries.Create(ctx, list[0].TimePublished, digest); err != nil {
		log.Errorf("save summary: %v", err)
	}
	log.Infof("stored %d articles and summary for %s", inserted, day)
	run.Status = StatusOK
	return &Result{CombinedSummary: digest}, nil
}

// existing answers the skipped result when day already has a summary.
func (s *Service) existing(ctx context.Context, day models.Day) (*Result, error) {
	sum, ok, err := s.summaries.Exists(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("check summary: %w", err)
	}
	if !ok {
		return nil, nil
	}
	log.Infof("summary already exists for %s", day)
	metrics.IngestRuns.WithLabelValues(StatusSkipped).Inc()
	return &Result{CombinedSummary: sum.CombinedSummary, Skipped: true}, nil
}

// CombineSummaries joins the non-empty article summaries with blank lines.
func CombineSummaries(list []*models.Article) string {
	parts := make([]string, 0, len(list))
	for _, a := range list {
		if a.Summary != "" {
			parts = append(parts, a.Summary)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Recent lists the latest ingestion runs.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if s.opts.Runs == nil {
		return []*Run{}, nil
	}
	return s.opts.Runs.Recent(ctx, limit)
}

func (s *Service) saveRun(ctx context.Context, r *Run) {
	if s.opts.Runs == nil {
		return
	}
	if err := s.opts.Runs.Save(ctx, r); err != nil {
		log.Warnf("%v", err)
	}
}

func lockKey(day models.Day) string { return "ingest:lock:" + day.Compact }

// lock takes the per-day Redis lock. Without Redis it is a no-op; a Redis
// failure is logged and ingestion proceeds unlocked.
func (s *Service) lock(ctx context.Context, day models.Day) (func(), error) {
	noop := func() {}
	if s.opts.Redis == nil {
		return noop, nil
	}
	token := uuid.NewString()
	ok, err := s.opts.Redis.SetNX(ctx, lockKey(day), token, lockTTL).Result()
	if err != nil {
		log.Warnf("ingest lock unavailable: %v", err)
		return noop, nil
	}
	if !ok {
		return nil, ErrInProgress
	}
	return func() {
		if err := releaseScript.Run(context.Background(), s.opts.Redis, []string{lockKey(day)}, token).Err(); err != nil {
			log.Warnf("release ingest lock: %v", err)
		}
	}, nil
}

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
