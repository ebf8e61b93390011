// Package app wires configuration into the services shared by the API server
// and the ingest command.
package app

import (
	"context"
	"time"

	"github.com/marketpulse/marketpulse/backend/go-services/handlers"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/articles"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/comments"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/database"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/favorites"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/ingest"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/llm"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/marketdata"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/oauth"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/proxy"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/sessions"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/storage"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/summaries"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/tokens"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoAttempts = 5

var log = logger.Named("app")

// App holds the wired services. Mongo and Redis are nil when unavailable;
// the services then run on in-memory stores.
type App struct {
	Config *config.Config
	Mongo  *mongo.Client
	Redis  *redis.Client

	Articles  *articles.Service
	Summaries *summaries.Service
	Comments  *comments.Service
	Favorites *favorites.Service
	Users     *users.Service
	Sessions  *sessions.Service
	Blacklist *sessions.Blacklist
	Issuer    *tokens.Issuer
	Ingest    *ingest.Service
	Proxy     *proxy.Service
	Google    *oauth.Google
	GitHub    *oauth.GitHub
}

// New connects to the configured backing services and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	a.Redis = connectRedis(ctx, cfg.Redis)

	var db *mongo.Database
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoAttempts)
	if err != nil {
		log.Warnf("MongoDB unavailable, using in-memory stores: %v", err)
	} else {
		a.Mongo = client
		db = client.Database(cfg.MongoDB.Database)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			log.Warnf("%v", err)
		}
		log.Infof("connected to MongoDB database %s", cfg.MongoDB.Database)
	}
	a.buildStores(db)

	a.Blacklist = sessions.NewBlacklist(a.Redis)
	a.Issuer = tokens.NewIssuer(cfg.JWT.Secret)
	a.Google = oauth.NewGoogle(ctx, cfg.Google)
	if gh := oauth.NewGitHub(cfg.GitHub); gh.Configured() {
		a.GitHub = gh
	}

	var cache proxy.Cache
	if a.Redis != nil {
		cache = proxy.NewRedisCache(a.Redis, cfg.Proxy.CacheTTL)
	} else {
		cache = proxy.NewMemoryCache(cfg.Proxy.CacheSize, cfg.Proxy.CacheTTL)
	}
	a.Proxy = proxy.NewService(cfg.Proxy, cache)

	a.Ingest = a.buildIngest(ctx, db)
	return a, nil
}

func connectRedis(ctx context.Context, c config.RedisConfig) *redis.Client {
	if c.Addr() == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: c.Addr(), Password: c.Password, DB: c.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnf("Redis unavailable at %s: %v", c.Addr(), err)
		_ = client.Close()
		return nil
	}
	log.Infof("connected to Redis at %s", c.Addr())
	return client
}

func (a *App) buildStores(db *mongo.Database) {
	ttl := a.Config.JWT.RefreshTokenTTL
	if db == nil {
		a.Articles = articles.NewService(articles.NewMemoryRepository())
		a.Summaries = summaries.NewService(summaries.NewMemoryRepository())
		a.Comments = comments.NewService(comments.NewMemoryRepository())
		a.Favorites = favorites.NewService(favorites.NewMemoryRepository())
		a.Users = users.NewService(users.NewMemoryUserRepository())
	} else {
		a.Articles = articles.NewService(articles.NewMongoRepository(db.Collection(database.ArticlesCollection)))
		a.Summaries = summaries.NewService(summaries.NewMongoRepository(db.Collection(database.SummariesCollection)))
		a.Comments = comments.NewService(comments.NewMongoRepository(db.Collection(database.CommentsCollection)))
		a.Favorites = favorites.NewService(favorites.NewMongoRepository(db.Collection(database.FavoritesCollection)))
		a.Users = users.NewService(users.NewMongoUserRepository(db.Collection(database.UsersCollection)))
	}

	switch {
	case a.Redis != nil:
		a.Sessions = sessions.NewService(sessions.NewRedisRepository(a.Redis, "session:"), ttl)
		log.Infof("sessions stored in Redis")
	case db != nil:
		a.Sessions = sessions.NewService(sessions.NewMongoRepository(db.Collection(database.SessionsCollection)), ttl)
	default:
		a.Sessions = sessions.NewService(sessions.NewMemoryRepository(), ttl)
	}
}

func (a *App) buildIngest(ctx context.Context, db *mongo.Database) *ingest.Service {
	cfg := a.Config
	opts := ingest.Options{
		FetchLimit:   cfg.AlphaVantage.Limit,
		ArticleLimit: cfg.Ingest.ArticleLimit,
		Redis:        a.Redis,
	}
	if sum, err := llm.New(cfg.LLM); err != nil {
		log.Warnf("summarizer disabled: %v", err)
	} else {
		opts.Summarizer = sum
	}
	if db != nil {
		opts.Runs = ingest.NewMongoRunStore(db)
	} else {
		opts.Runs = ingest.NewMemoryRunStore()
	}
	if cfg.Storage.Enabled() {
		st, err := storage.NewMinIOStorage(cfg.Storage)
		if err != nil {
			log.Warnf("feed archive disabled: %v", err)
		} else {
			if err := st.EnsureBucket(ctx); err != nil {
				log.Warnf("ensure bucket %s: %v", cfg.Storage.Bucket, err)
			}
			opts.Archiver = st
		}
	}
	return ingest.NewService(marketdata.NewClient(cfg.AlphaVantage), a.Articles, a.Summaries, opts)
}

// Deps exposes the services to the HTTP layer.
func (a *App) Deps() handlers.Deps {
	d := handlers.Deps{
		Config:    a.Config,
		Articles:  a.Articles,
		Summaries: a.Summaries,
		Comments:  a.Comments,
		Favorites: a.Favorites,
		Users:     a.Users,
		Sessions:  a.Sessions,
		Blacklist: a.Blacklist,
		Issuer:    a.Issuer,
		Ingest:    a.Ingest,
		Proxy:     a.Proxy,
		Google:    a.Google,
	}
	// a nil *GitHub must stay a nil interface
	if a.GitHub != nil {
		d.GitHub = a.GitHub
	}
	return d
}

// Close releases the database connections.
func (a *App) Close(ctx context.Context) {
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Warnf("mongo disconnect: %v", err)
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
