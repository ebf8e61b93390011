package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	idleLimiterTTL    = 10 * time.Minute
)

// limiters holds one token bucket per client; idle buckets age out.
type limiters struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *rate.Limiter]
	rps   rate.Limit
	burst int
}

func newLimiters(rps float64, burst int) *limiters {
	return &limiters{
		cache: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, idleLimiterTTL),
		rps:   rate.Limit(rps),
		burst: burst,
	}
}

func (l *limiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.cache.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
	}
	// re-adding refreshes the idle TTL
	l.cache.Add(key, lim)
	return lim
}

// limitKey prefers the authenticated user id over the client address.
func limitKey(c *gin.Context) string {
	if id := ClaimString(c, "id"); id != "" {
		return "user:" + id
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func tooManyRequests(c *gin.Context, backend string, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	metrics.RateLimitRejected.WithLabelValues(backend).Inc()
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
}

// RateLimitMiddleware enforces an in-process token bucket per user id or
// client IP. rps = events per second, burst = bucket size.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := newLimiters(rps, burst)
	return func(c *gin.Context) {
		if !store.get(limitKey(c)).Allow() {
			tooManyRequests(c, "memory", 1)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
