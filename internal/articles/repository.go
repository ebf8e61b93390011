package articles

import (
	"context"
	"errors"
	"fmt"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("article not found")
	ErrInvalidID = errors.New("invalid article id")
)

const duplicateKeyCode = 11000

// Repository provides article persistence operations
type Repository interface {
	// InsertMany stores articles, skipping ones whose url already exists,
	// and returns how many were inserted.
	InsertMany(ctx context.Context, list []*models.Article) (int, error)
	ListByDay(ctx context.Context, day models.Day) ([]*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Article, error)
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) InsertMany(ctx context.Context, list []*models.Article) (int, error) {
	if len(list) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(list))
	for _, a := range list {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		docs = append(docs, a)
	}
	res, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(res.InsertedIDs), nil
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil {
		for _, we := range bwe.WriteErrors {
			if we.Code != duplicateKeyCode {
				return 0, fmt.Errorf("insert articles: %w", err)
			}
		}
		return len(list) - len(bwe.WriteErrors), nil
	}
	return 0, fmt.Errorf("insert articles: %w", err)
}

func (r *MongoRepository) ListByDay(ctx context.Context, day models.Day) ([]*models.Article, error) {
	filter := bson.M{"time_published": primitive.Regex{Pattern: "^" + day.Compact}}
	opts := options.Find().SetSort(bson.D{{Key: "time_published", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	var a models.Article
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoRepository) ListRecent(ctx context.Context, limit int) ([]*models.Article, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "time_published", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*models.Article, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Article{}
	for cur.Next(ctx) {
		var a models.Article
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, cur.Err()
}
