package users

import (
	"context"
	"errors"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrUserExists = errors.New("user exists")

// Identity is what an OAuth provider tells us about the signed-in user.
type Identity struct {
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Picture    string
	Locale     string
	Username   string
	Provider   string
}

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when the user does not exist.
type UserRepository interface {
	UpsertByEmail(ctx context.Context, id Identity, now time.Time) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateFields applies a $set of profile fields and returns the updated user.
	UpdateFields(ctx context.Context, id string, set map[string]interface{}) (*models.User, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) UpsertByEmail(ctx context.Context, id Identity, now time.Time) (*models.User, error) {
	set := bson.M{
		"name":        id.Name,
		"given_name":  id.GivenName,
		"family_name": id.FamilyName,
		"picture":     id.Picture,
		"last_login":  now,
		"updated_at":  now,
	}
	if id.Locale != "" {
		set["locale"] = id.Locale
	}
	if id.Username != "" {
		set["username"] = id.Username
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"email":      id.Email,
			"provider":   id.Provider,
			"age":        models.DefaultAge,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"email": id.Email}, update, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) UpdateFields(ctx context.Context, id string, set map[string]interface{}) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, updateDoc(set), opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// updateDoc turns nil values into $unset.
func updateDoc(fields map[string]interface{}) bson.M {
	set, unset := bson.M{}, bson.M{}
	for k, v := range fields {
		if v == nil {
			unset[k] = ""
		} else {
			set[k] = v
		}
	}
	doc := bson.M{}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
