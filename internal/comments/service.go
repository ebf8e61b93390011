package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
)

var (
	ErrEmptyContent   = errors.New("comment content is required")
	ErrContentTooLong = fmt.Errorf("comment must be at most %d characters", models.MaxCommentLength)
)

// Author identifies who wrote a comment; it comes from the caller's token claims.
type Author struct {
	ID    string
	Name  string
	Email string
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) List(ctx context.Context, day models.Day) ([]*models.Comment, error) {
	return s.repo.ListByDate(ctx, day.Dashed)
}

// Add validates and stores a comment for the day.
func (s *Service) Add(ctx context.Context, day models.Day, author Author, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return nil, ErrContentTooLong
	}
	name := strings.TrimSpace(author.Name)
	if name == "" {
		name = models.AnonymousName
	}
	now := s.now()
	c := &models.Comment{
		SummaryDate: day.Dashed,
		UserID:      author.ID,
		UserName:    name,
		UserEmail:   author.Email,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}
