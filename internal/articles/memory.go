package articles

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-process Repository for tests and for running
// without MongoDB.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []*models.Article
	byURL map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byURL: make(map[string]struct{})}
}

func (m *MemoryRepository) InsertMany(_ context.Context, list []*models.Article) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range list {
		if _, dup := m.byURL[a.URL]; dup {
			continue
		}
		cp := *a
		if cp.ID.IsZero() {
			cp.ID = primitive.NewObjectID()
		}
		a.ID = cp.ID
		m.items = append(m.items, &cp)
		m.byURL[a.URL] = struct{}{}
		n++
	}
	return n, nil
}

func (m *MemoryRepository) ListByDay(_ context.Context, day models.Day) ([]*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Article{}
	for _, a := range m.items {
		if strings.HasPrefix(a.TimePublished, day.Compact) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*models.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.items {
		if a.ID == oid {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) ListRecent(_ context.Context, limit int) ([]*models.Article, error) {
	m.mu.RLock()
	out := make([]*models.Article, 0, len(m.items))
	for _, a := range m.items {
		cp := *a
		out = append(out, &cp)
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(list []*models.Article) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].TimePublished > list[j].TimePublished
	})
}
