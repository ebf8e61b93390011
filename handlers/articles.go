package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/articles"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/ingest"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/summaries"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/middleware"
	"golang.org/x/sync/errgroup"
)

type ArticlesHandler struct {
	articles      *articles.Service
	summaries     *summaries.Service
	ingest        *ingest.Service
	internalToken string
}

func NewArticlesHandler(a *articles.Service, s *summaries.Service, in *ingest.Service, internalToken string) *ArticlesHandler {
	return &ArticlesHandler{articles: a, summaries: s, ingest: in, internalToken: internalToken}
}

// Register routes under /articles. Ingestion endpoints need the internal token.
func (h *ArticlesHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/articles")
	a.GET("", h.Recent)
	a.GET("/id/:id", h.Get)
	a.GET("/combined/:date", h.Combined)
	a.GET("/:date", h.ForDay)

	internal := middleware.InternalOnly(h.internalToken)
	a.POST("", internal, h.Ingest)
	rg.GET("/ingest/runs", internal, h.Runs)
}

func (h *ArticlesHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.articles.Recent(c.Request.Context(), limit)
	if err != nil {
		serverError(c, "failed to list articles", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *ArticlesHandler) ForDay(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	list, err := h.articles.ForDay(c.Request.Context(), day)
	if err != nil {
		serverError(c, "failed to list articles", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *ArticlesHandler) Get(c *gin.Context) {
	a, err := h.articles.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, articles.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
	case errors.Is(err, articles.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
	case err != nil:
		serverError(c, "failed to load article", err)
	default:
		c.JSON(http.StatusOK, a)
	}
}

// Combined returns a day's summary and articles, loaded concurrently.
func (h *ArticlesHandler) Combined(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	var (
		sum  *models.Summary
		list []*models.Article
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		s, err := h.summaries.ForDay(ctx, day)
		if errors.Is(err, summaries.ErrNotFound) {
			return nil
		}
		sum = s
		return err
	})
	g.Go(func() error {
		var err error
		list, err = h.articles.ForDay(ctx, day)
		return err
	})
	if err := g.Wait(); err != nil {
		serverError(c, "failed to load day", err)
		return
	}
	list = nonNil(list)
	c.JSON(http.StatusOK, gin.H{
		"date":           day.Compact,
		"summary":        sum,
		"articles":       list,
		"total_articles": len(list),
	})
}

// Ingest runs ingestion for today, or for ?date= when given.
func (h *ArticlesHandler) Ingest(c *gin.Context) {
	day := h.ingest.Today()
	if raw := c.Query("date"); raw != "" {
		d, err := models.ParseDay(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidDateMsg})
			return
		}
		day = d
	}
	res, err := h.ingest.Run(c.Request.Context(), day, "api")
	switch {
	case errors.Is(err, ingest.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API keys not configured"})
	case errors.Is(err, ingest.ErrInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		serverError(c, "Error fetching news", err)
	default:
		c.JSON(http.StatusOK, res)
	}
}

func (h *ArticlesHandler) Runs(c *gin.Context) {
	runs, err := h.ingest.Recent(c.Request.Context(), 20)
	if err != nil {
		serverError(c, "failed to list ingest runs", err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
