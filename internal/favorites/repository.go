package favorites

import (
	"context"
	"errors"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("favorite not found")

// Repository provides favorite persistence operations
type Repository interface {
	Create(ctx context.Context, f *models.Favorite) error
	Find(ctx context.Context, userID, articleID string) (*models.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error)
	Delete(ctx context.Context, userID, articleID string) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func byUserArticle(userID, articleID string) bson.M {
	return bson.M{"userId": userID, "article._id": articleID}
}

func (r *MongoRepository) Create(ctx context.Context, f *models.Favorite) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, f)
	return err
}

func (r *MongoRepository) Find(ctx context.Context, userID, articleID string) (*models.Favorite, error) {
	var f models.Favorite
	if err := r.col.FindOne(ctx, byUserArticle(userID, articleID)).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Favorite{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID, articleID string) error {
	res, err := r.col.DeleteOne(ctx, byUserArticle(userID, articleID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
