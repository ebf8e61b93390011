package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run statuses.
const (
	StatusRunning     = "running"
	StatusOK          = "ok"
	StatusSkipped     = "skipped"
	StatusEmpty       = "empty"
	StatusNoSummary   = "no_summary"
	StatusRateLimited = "rate_limited"
	StatusFailed      = "failed"
)

// Run is the persisted record of one ingestion attempt.
type Run struct {
	RunID      string     `bson:"runId" json:"runId"`
	Day        string     `bson:"day" json:"day"`
	Trigger    string     `bson:"trigger" json:"trigger"`
	Status     string     `bson:"status" json:"status"`
	Fetched    int        `bson:"fetched" json:"fetched"`
	Inserted   int        `bson:"inserted" json:"inserted"`
	ArchiveKey string     `bson:"archiveKey,omitempty" json:"archiveKey,omitempty"`
	Error      string     `bson:"error,omitempty" json:"error,omitempty"`
	StartedAt  time.Time  `bson:"startedAt" json:"startedAt"`
	FinishedAt *time.Time `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
}

// RunStore keeps ingestion history.
type RunStore interface {
	Save(ctx context.Context, r *Run) error
	Recent(ctx context.Context, limit int) ([]*Run, error)
}

type MongoRunStore struct {
	col *mongo.Collection
}

func NewMongoRunStore(db *mongo.Database) *MongoRunStore {
	return &MongoRunStore{col: db.Collection(database.IngestRunsCollection)}
}

// Save upserts the run by runId.
func (s *MongoRunStore) Save(ctx context.Context, r *Run) error {
	opts := options.Update().SetUpsert(true)
	if _, err := s.col.UpdateOne(ctx, bson.M{"runId": r.RunID}, bson.M{"$set": r}, opts); err != nil {
		return fmt.Errorf("save ingest run: %w", err)
	}
	return nil
}

func (s *MongoRunStore) Recent(ctx context.Context, limit int) ([]*Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Run
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MemoryRunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]*Run)}
}

func (m *MemoryRunStore) Save(_ context.Context, r *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.runs[r.RunID] = &cp
	return nil
}

func (m *MemoryRunStore) Recent(_ context.Context, limit int) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
