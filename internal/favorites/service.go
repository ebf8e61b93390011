package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
)

var (
	ErrInvalidArticle = errors.New("invalid article data")
	ErrDuplicate      = errors.New("article already in favorites")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) List(ctx context.Context, userID string) ([]*models.Favorite, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Add saves a copy of article for the user. The article's _id must equal articleID.
func (s *Service) Add(ctx context.Context, userID, articleID string, article map[string]interface{}) (*models.Favorite, error) {
	if articleID == "" || models.ArticleIDOf(article) != articleID {
		return nil, ErrInvalidArticle
	}
	_, err := s.repo.Find(ctx, userID, articleID)
	switch {
	case err == nil:
		return nil, ErrDuplicate
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("lookup favorite: %w", err)
	}
	f := &models.Favorite{UserID: userID, Article: article, CreatedAt: s.now()}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	return f, nil
}

// Remove deletes the user's favorite for articleID or returns ErrNotFound.
func (s *Service) Remove(ctx context.Context, userID, articleID string) error {
	return s.repo.Delete(ctx, userID, articleID)
}
