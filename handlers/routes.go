package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/articles"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/comments"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/favorites"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/ingest"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/oauth"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/proxy"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/sessions"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/summaries"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/tokens"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/middleware"
)

// Deps is everything the HTTP surface needs. Blacklist and GitHub may be nil.
type Deps struct {
	Config    *config.Config
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
	Google    oauth.Provider
	GitHub    oauth.Provider
}

// Mount registers the /api and /auth routes plus the JSON 404 fallback.
func Mount(r *gin.Engine, d Deps) {
	auth := middleware.AuthMiddleware(d.Issuer, d.Blacklist)

	api := r.Group("/api")
	RegisterHello(api)
	NewArticlesHandler(d.Articles, d.Summaries, d.Ingest, d.Config.Internal.Token).Register(api)
	NewSummariesHandler(d.Summaries, d.Comments, auth).Register(api)
	NewFavoritesHandler(d.Favorites, auth).Register(api)
	NewProfileHandler(d.Users, auth).Register(api)
	NewProxyHandler(d.Proxy).Register(api)
	NewOAuthHandler(d.Config, d.Google, d.Users, d.Issuer).Register(api)

	NewAuthHandler(d.Config, d.Users, d.Sessions, d.Issuer, d.Blacklist, d.GitHub).Register(r)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}
