package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/marketpulse/marketpulse/backend/go-services/handlers"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/app"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/ingest"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/logger"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/metrics"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v llm=%s ingest=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.LLM.Provider, cfg.Ingest.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to initialise services: %v", err)
	}
	defer a.Close(context.Background())

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), metrics.Instrument())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "x-auth-token", middleware.InternalTokenHeader},
		ExposeHeaders:   []string{"Content-Length", middleware.RequestIDHeader},
	}))

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && a.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(a.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
		logger.Infof("rate limiter enabled: rps=%v burst=%d redis=%v", cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.UseRedis && a.Redis != nil)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) { ready(c, a) })

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)
	handlers.Mount(r, a.Deps())

	var sched *ingest.Scheduler
	if cfg.Ingest.Enabled {
		sched = ingest.NewScheduler()
		if err := sched.Add(a.Ingest.DailyJob(cfg.Ingest.Interval, cfg.Ingest.Schedule, cfg.Ingest.Timeout)); err != nil {
			logger.Fatalf("invalid ingest schedule: %v", err)
		}
		sched.Start(ctx)
		if cfg.Ingest.Schedule != "" {
			logger.Infof("ingestion scheduled at %q (UTC)", cfg.Ingest.Schedule)
		} else {
			logger.Infof("ingestion scheduled every %s", cfg.Ingest.Interval)
		}
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Server running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if sched != nil {
		sched.Shutdown()
	}
}

// ready answers 200 when the persistent stores are reachable.
func ready(c *gin.Context, a *app.App) {
	deps := map[string]bool{
		"mongo":  a.Mongo != nil,
		"redis":  a.Redis != nil || a.Config.Redis.Addr() == "",
		"ingest": a.Ingest.Configured(),
	}
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		deps["mongo"] = a.Mongo.Ping(ctx, nil) == nil
	}
	status, code := "ready", http.StatusOK
	if !deps["mongo"] || !deps["redis"] {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
}
