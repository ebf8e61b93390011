package database

import (
	"context"
	"fmt"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	ArticlesCollection   = "articles"
	SummariesCollection  = "summaries"
	CommentsCollection   = "comments"
	FavoritesCollection  = "favorites"
	UsersCollection      = "users"
	SessionsCollection   = "sessions"
	IngestRunsCollection = "ingest_runs"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	// nested documents (favorite article snapshots) decode as maps
	opts := options.Client().ApplyURI(uri).SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// ConnectWithRetry keeps trying ConnectMongo with exponential backoff (capped at 10s)
// until it succeeds, attempts run out, or ctx is done.
func ConnectWithRetry(ctx context.Context, uri string, timeout time.Duration, attempts int) (*mongo.Client, error) {
	if attempts <= 0 {
		attempts = 1
	}
	backoff := 500 * time.Millisecond
	var lastErr error
	for i := 1; i <= attempts; i++ {
		client, err := ConnectMongo(ctx, uri, timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("mongo attempt %d/%d failed: %v", i, attempts, err)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, lastErr
}

// Indexes names the indexes the application relies on.
var Indexes = map[string][]mongo.IndexModel{
	ArticlesCollection: {
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "time_published", Value: -1}}},
	},
	SummariesCollection: {
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	},
	CommentsCollection: {
		{Keys: bson.D{{Key: "summary_date", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	FavoritesCollection: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "article._id", Value: 1}}},
	},
	UsersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	SessionsCollection: {
		{Keys: bson.D{{Key: "refreshToken", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

// EnsureIndexes creates every index in Indexes. It is safe to call on each start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range Indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
