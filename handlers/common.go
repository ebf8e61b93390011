package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
)

const invalidDateMsg = "Invalid date format. Use YYYYMMDD (e.g., 20250923)"

// dayParam parses the :date path parameter and answers 400 when it is not a real day.
func dayParam(c *gin.Context) (models.Day, bool) {
	day, err := models.ParseDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidDateMsg})
		return models.Day{}, false
	}
	return day, true
}

// serverError logs err and answers 500 with a generic message.
func serverError(c *gin.Context, msg string, err error) {
	logger.Errorf("%s %s: %s: %v", c.Request.Method, c.FullPath(), msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// RegisterHello mounts the sample route.
func RegisterHello(rg *gin.RouterGroup) {
	rg.GET("/helloworld", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
	})
}
