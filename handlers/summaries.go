package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/comments"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/summaries"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/middleware"
)

// SummariesHandler serves daily summaries and the comments attached to them.
type SummariesHandler struct {
	summaries *summaries.Service
	comments  *comments.Service
	auth      gin.HandlerFunc
}

func NewSummariesHandler(s *summaries.Service, cm *comments.Service, auth gin.HandlerFunc) *SummariesHandler {
	return &SummariesHandler{summaries: s, comments: cm, auth: auth}
}

func (h *SummariesHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/summaries")
	s.GET("", h.Recent)
	s.GET("/:date", h.ForDay)
	s.GET("/:date/comments", h.Comments)
	s.POST("/:date/comments", h.auth, h.AddComment)
}

func (h *SummariesHandler) Recent(c *gin.Context) {
	list, err := h.summaries.Recent(c.Request.Context())
	if err != nil {
		serverError(c, "failed to list summaries", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *SummariesHandler) ForDay(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	s, err := h.summaries.ForDay(c.Request.Context(), day)
	if errors.Is(err, summaries.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Summary not found for the specified date"})
		return
	}
	if err != nil {
		serverError(c, "failed to load summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":             s.Date,
		"combined_summary": s.CombinedSummary,
		"created_at":       s.CreatedAt,
	})
}

func (h *SummariesHandler) Comments(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	list, err := h.comments.List(c.Request.Context(), day)
	if err != nil {
		serverError(c, "failed to list comments", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *SummariesHandler) AddComment(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	name := middleware.ClaimString(c, "name")
	if name == "" {
		name = middleware.ClaimString(c, "full_name")
	}
	author := comments.Author{
		ID:    middleware.UserID(c),
		Name:  name,
		Email: middleware.ClaimString(c, "email"),
	}
	cm, err := h.comments.Add(c.Request.Context(), day, author, req.Content)
	switch {
	case errors.Is(err, comments.ErrEmptyContent), errors.Is(err, comments.ErrContentTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		serverError(c, "failed to add comment", err)
	default:
		c.JSON(http.StatusCreated, cm)
	}
}
