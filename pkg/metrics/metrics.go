package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "marketpulse", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "marketpulse", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "marketpulse", Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	IngestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "marketpulse", Name: "ingest_runs_total", Help: "Daily ingestion runs by outcome."},
		[]string{"status"},
	)
	ArticlesIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "marketpulse", Name: "articles_ingested_total", Help: "Articles handed to storage by ingestion runs."},
	)
	ProxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "marketpulse", Name: "proxy_requests_total", Help: "Article proxy requests by extraction result."},
		[]string{"result"},
	)
	ProxyCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "marketpulse", Name: "proxy_cache_hits_total", Help: "Article proxy responses served from cache."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(IngestRuns)
	reg.MustRegister(ArticlesIngested)
	reg.MustRegister(ProxyRequests)
	reg.MustRegister(ProxyCacheHits)
}

// Instrument counts every request by its route template (not the raw path).
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
