package summaries

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.Summary
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (m *MemoryRepository) Create(_ context.Context, s *models.Summary) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	m.mu.Lock()
	m.items = append(m.items, *s)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) FindByDay(_ context.Context, day models.Day) (*models.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *models.Summary
	for i := range m.items {
		s := m.items[i]
		if !strings.HasPrefix(s.Date, day.Compact) {
			continue
		}
		if found == nil || s.CreatedAt.After(found.CreatedAt) {
			found = &s
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *MemoryRepository) ListRecent(_ context.Context, limit int) ([]*models.Summary, error) {
	m.mu.RLock()
	out := make([]*models.Summary, 0, len(m.items))
	for i := range m.items {
		s := m.items[i]
		out = append(out, &s)
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
