package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/proxy"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
)

type ProxyHandler struct {
	svc *proxy.Service
}

func NewProxyHandler(s *proxy.Service) *ProxyHandler { return &ProxyHandler{svc: s} }

func (h *ProxyHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/proxy", h.Get)
}

// Get renders the article at ?url= as a standalone reader page. The status
// mirrors the upstream response.
func (h *ProxyHandler) Get(c *gin.Context) {
	u, err := proxy.NormalizeURL(c.Query("url"))
	switch {
	case errors.Is(err, proxy.ErrMissingURL):
		c.String(http.StatusBadRequest, "Missing URL")
		return
	case err != nil:
		c.String(http.StatusBadRequest, "Invalid URL")
		return
	}
	page, err := h.svc.Fetch(c.Request.Context(), u)
	if err != nil {
		logger.Errorf("proxy error: %v", err)
		c.String(http.StatusInternalServerError, "Proxy failed")
		return
	}
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(page.Status, "text/html; charset=utf-8", []byte(page.HTML))
}
