package favorites

import (
	"context"
	"sort"
	"sync"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*models.Favorite
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string][]*models.Favorite)}
}

func (m *MemoryRepository) Create(_ context.Context, f *models.Favorite) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	cp := *f
	m.mu.Lock()
	m.byUser[f.UserID] = append(m.byUser[f.UserID], &cp)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Find(_ context.Context, userID, articleID string) (*models.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.byUser[userID] {
		if f.ArticleID() == articleID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*models.Favorite, error) {
	m.mu.RLock()
	out := make([]*models.Favorite, 0, len(m.byUser[userID]))
	for _, f := range m.byUser[userID] {
		cp := *f
		out = append(out, &cp)
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, userID, articleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.byUser[userID]
	for i, f := range list {
		if f.ArticleID() == articleID {
			m.byUser[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
