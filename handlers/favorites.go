package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/favorites"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/middleware"
)

type FavoritesHandler struct {
	svc  *favorites.Service
	auth gin.HandlerFunc
}

func NewFavoritesHandler(s *favorites.Service, auth gin.HandlerFunc) *FavoritesHandler {
	return &FavoritesHandler{svc: s, auth: auth}
}

// Register mounts /favorites; every route requires a signed-in user.
func (h *FavoritesHandler) Register(rg *gin.RouterGroup) {
	f := rg.Group("/favorites", h.auth)
	f.GET("", h.List)
	f.POST("/:articleId", h.Add)
	f.DELETE("/:articleId", h.Remove)
}

func (h *FavoritesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		serverError(c, "Server error fetching favorites", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *FavoritesHandler) Add(c *gin.Context) {
	var req struct {
		Article map[string]interface{} `json:"article"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article data"})
		return
	}
	f, err := h.svc.Add(c.Request.Context(), middleware.UserID(c), c.Param("articleId"), req.Article)
	switch {
	case errors.Is(err, favorites.ErrInvalidArticle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article data"})
	case errors.Is(err, favorites.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Article already in favorites"})
	case err != nil:
		serverError(c, "Server error adding favorite", err)
	default:
		c.JSON(http.StatusCreated, f)
	}
}

func (h *FavoritesHandler) Remove(c *gin.Context) {
	err := h.svc.Remove(c.Request.Context(), middleware.UserID(c), c.Param("articleId"))
	switch {
	case errors.Is(err, favorites.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
	case err != nil:
		serverError(c, "Server error removing favorite", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
	}
}
