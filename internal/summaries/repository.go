package summaries

import (
	"context"
	"errors"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("summary not found")

// Repository provides summary persistence operations
type Repository interface {
	Create(ctx context.Context, s *models.Summary) error
	// FindByDay returns the newest summary whose date starts with the day, or ErrNotFound.
	FindByDay(ctx context.Context, day models.Day) (*models.Summary, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Summary, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *models.Summary) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) FindByDay(ctx context.Context, day models.Day) (*models.Summary, error) {
	filter := bson.M{"date": primitive.Regex{Pattern: "^" + day.Compact}}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var s models.Summary
	if err := r.col.FindOne(ctx, filter, opts).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) ListRecent(ctx context.Context, limit int) ([]*models.Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
