package articles

import (
	"context"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Save stores freshly ingested articles; duplicate urls are skipped.
func (s *Service) Save(ctx context.Context, list []*models.Article) (int, error) {
	return s.repo.InsertMany(ctx, list)
}

func (s *Service) ForDay(ctx context.Context, day models.Day) ([]*models.Article, error) {
	return s.repo.ListByDay(ctx, day)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Article, error) {
	return s.repo.GetByID(ctx, id)
}

// Recent returns the newest articles; limit is clamped to 1..MaxListLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.Article, error) {
	return s.repo.ListRecent(ctx, ClampLimit(limit))
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
