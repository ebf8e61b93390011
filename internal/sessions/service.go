package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Service issues, validates and rotates refresh sessions.
type Service struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{repo: r, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a new session for userID and returns its refresh token.
func (s *Service) Create(ctx context.Context, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := s.now()
	sess := &Session{
		RefreshToken: hex.EncodeToString(b),
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sess.RefreshToken, nil
}

// Validate returns the live session for refresh, or nil.
func (s *Service) Validate(ctx context.Context, refresh string) (*Session, error) {
	if refresh == "" {
		return nil, nil
	}
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		return nil, nil
	}
	return sess, nil
}

// Rotate exchanges a valid refresh token for a new one. It returns ("", nil, nil)
// when refresh is unknown or expired.
func (s *Service) Rotate(ctx context.Context, refresh string) (string, *Session, error) {
	sess, err := s.Validate(ctx, refresh)
	if err != nil || sess == nil {
		return "", nil, err
	}
	if err := s.repo.DeleteByRefresh(ctx, refresh); err != nil {
		return "", nil, fmt.Errorf("delete session: %w", err)
	}
	next, err := s.Create(ctx, sess.UserID)
	if err != nil {
		return "", nil, err
	}
	return next, sess, nil
}

func (s *Service) Delete(ctx context.Context, refresh string) error {
	return s.repo.DeleteByRefresh(ctx, refresh)
}
