package summaries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
)

// RecentLimit is how many summaries the listing endpoint returns.
const RecentLimit = 30

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

// ForDay returns the summary for the day or ErrNotFound.
func (s *Service) ForDay(ctx context.Context, day models.Day) (*models.Summary, error) {
	return s.repo.FindByDay(ctx, day)
}

// Exists reports whether a summary was already produced for the day.
func (s *Service) Exists(ctx context.Context, day models.Day) (*models.Summary, bool, error) {
	sum, err := s.repo.FindByDay(ctx, day)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return sum, true, nil
}

// Create stores a new summary. date is the time_published of the first article.
func (s *Service) Create(ctx context.Context, date, text string) (*models.Summary, error) {
	sum := &models.Summary{Date: date, CombinedSummary: text, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, sum); err != nil {
		return nil, fmt.Errorf("create summary: %w", err)
	}
	return sum, nil
}

func (s *Service) Recent(ctx context.Context) ([]*models.Summary, error) {
	return s.repo.ListRecent(ctx, RecentLimit)
}
