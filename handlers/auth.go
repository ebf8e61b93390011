package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/oauth"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/sessions"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/tokens"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
)

const (
	loginTokenTTL   = time.Hour
	stateCookieName = "oauth_state"
)

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg       *config.Config
	users     *users.Service
	sessions  *sessions.Service
	issuer    *tokens.Issuer
	blacklist *sessions.Blacklist
	github    oauth.Provider
}

// NewAuthHandler wires the /auth routes. blacklist and github may be nil.
func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service, iss *tokens.Issuer, bl *sessions.Blacklist, gh oauth.Provider) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: u, sessions: s, issuer: iss, blacklist: bl, github: gh}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg gin.IRouter) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
	a.GET("/logout", h.LogoutRedirect)
	a.GET("/github", h.GitHubLogin)
	a.GET("/github/callback", h.GitHubCallback)
}

type publicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toPublic(u *models.User) publicUser {
	return publicUser{ID: u.ID.Hex(), Username: u.Username, Email: u.Email}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}
	u, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
	case errors.Is(err, users.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User exists"})
	case err != nil:
		serverError(c, "registration failed", err)
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Registered successfully", "user": toPublic(u)})
	}
}

// Login checks email/password and returns an access token plus a refresh token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		serverError(c, "login failed", err)
		return
	}
	access, err := h.issuer.GenerateAccessToken(u, loginTokenTTL)
	if err != nil {
		serverError(c, "failed to create access token", err)
		return
	}
	refresh, err := h.sessions.Create(c.Request.Context(), u.ID.Hex())
	if err != nil {
		serverError(c, "failed to create session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access, "refreshToken": refresh, "user": toPublic(u)})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	SnakeToken   string `json:"refresh_token"`
}

func (r refreshRequest) token() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	return r.SnakeToken
}

// Refresh rotates the refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.token() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken required"})
		return
	}
	next, sess, err := h.sessions.Rotate(c.Request.Context(), req.token())
	if err != nil {
		serverError(c, "validation failed", err)
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	u, err := h.users.Get(c.Request.Context(), sess.UserID)
	if err != nil {
		serverError(c, "user lookup failed", err)
		return
	}
	access, err := h.issuer.GenerateAccessToken(u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		serverError(c, "failed to create access token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access, "refreshToken": next})
}

// Logout revokes the presented access token for the rest of its lifetime and
// drops the refresh session when one is given.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	if raw := bearer(c); raw != "" {
		if claims, err := h.issuer.Parse(raw); err == nil {
			if err := h.blacklist.Revoke(c.Request.Context(), raw, claims.Remaining(time.Now())); err != nil {
				serverError(c, "failed to blacklist access token", err)
				return
			}
		}
	}
	if rt := req.token(); rt != "" {
		if err := h.sessions.Delete(c.Request.Context(), rt); err != nil {
			serverError(c, "failed to remove session", err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) LogoutRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, h.cfg.ClientURL)
}

func bearer(c *gin.Context) string {
	if parts := strings.Fields(c.GetHeader("Authorization")); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return strings.TrimSpace(c.GetHeader("x-auth-token"))
}

func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	if h.github == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub sign-in not configured"})
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, 600, "/auth/github", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, h.github.AuthURL(state))
}

func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if h.github == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub sign-in not configured"})
		return
	}
	expected, err := c.Cookie(stateCookieName)
	if err != nil || expected == "" || c.Query("state") != expected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/auth/github", "", c.Request.TLS != nil, true)
	completeOAuth(c, h.github, h.users, h.issuer, h.cfg)
}

// completeOAuth exchanges ?code=, upserts the user and redirects to the web
// client with a fresh access token.
func completeOAuth(c *gin.Context, p oauth.Provider, us *users.Service, iss *tokens.Issuer, cfg *config.Config) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	id, err := p.Identity(c.Request.Context(), code)
	if err != nil {
		logger.Errorf("OAuth error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OAuth failed"})
		return
	}
	u, err := us.UpsertOAuth(c.Request.Context(), id)
	if err != nil {
		logger.Errorf("OAuth user upsert: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OAuth failed"})
		return
	}
	token, err := iss.GenerateAccessToken(u, cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("OAuth token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "OAuth failed"})
		return
	}
	c.Redirect(http.StatusFound, cfg.ClientURL+"?token="+url.QueryEscape(token))
}
