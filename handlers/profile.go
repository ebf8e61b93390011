package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/middleware"
)

type ProfileHandler struct {
	users *users.Service
	auth  gin.HandlerFunc
}

func NewProfileHandler(u *users.Service, auth gin.HandlerFunc) *ProfileHandler {
	return &ProfileHandler{users: u, auth: auth}
}

func (h *ProfileHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/profile", h.auth)
	p.GET("", h.Get)
	p.PUT("", h.Update)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		serverError(c, "Server error", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Update applies the editable profile fields; other keys in the body are ignored.
func (h *ProfileHandler) Update(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), middleware.UserID(c), patch)
	var ve *users.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case err != nil:
		serverError(c, "Server error", err)
	default:
		c.JSON(http.StatusOK, u)
	}
}
