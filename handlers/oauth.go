package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/oauth"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/tokens"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
)

// OAuthHandler serves the Google sign-in flow under /api/oauth.
type OAuthHandler struct {
	cfg    *config.Config
	google oauth.Provider
	users  *users.Service
	issuer *tokens.Issuer
}

func NewOAuthHandler(cfg *config.Config, g oauth.Provider, u *users.Service, iss *tokens.Issuer) *OAuthHandler {
	return &OAuthHandler{cfg: cfg, google: g, users: u, issuer: iss}
}

func (h *OAuthHandler) Register(rg *gin.RouterGroup) {
	o := rg.Group("/oauth")
	o.GET("/url", h.URL)
	o.GET("/callback", h.Callback)
}

func (h *OAuthHandler) URL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.google.AuthURL("")})
}

func (h *OAuthHandler) Callback(c *gin.Context) {
	completeOAuth(c, h.google, h.users, h.issuer, h.cfg)
}
