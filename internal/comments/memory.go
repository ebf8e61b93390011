package comments

import (
	"context"
	"sort"
	"sync"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	byDate map[string][]models.Comment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byDate: make(map[string][]models.Comment)}
}

func (m *MemoryRepository) Create(_ context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.mu.Lock()
	m.byDate[c.SummaryDate] = append(m.byDate[c.SummaryDate], *c)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) ListByDate(_ context.Context, date string) ([]*models.Comment, error) {
	m.mu.RLock()
	src := m.byDate[date]
	out := make([]*models.Comment, 0, len(src))
	for i := range src {
		c := src[i]
		out = append(out, &c)
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
