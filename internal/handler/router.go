// Package handler assembles the HTTP engine: middleware, health probes,
// metrics and the versioned API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/vetcare/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterConfig struct {
	Config   *config.Config
	Handlers v1.Handlers
	Tokens   middleware.TokenValidator
	Metrics  *metrics.Collector
	DB       Pinger
	Log      *zap.Logger

	// Limiters are exposed so the caller can sweep idle clients.
	Global *middleware.IPLimiter
	Login  *middleware.IPLimiter
}

func NewLimiters(cfg config.RateLimitConfig) (global, login *middleware.IPLimiter) {
	global = middleware.NewIPLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize)
	perMinute := cfg.AuthRequestsPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	login = middleware.NewIPLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	return global, login
}

func NewRouter(rc RouterConfig) *gin.Engine {
	if rc.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(rc.Log),
		otelgin.Middleware(rc.Config.Tracing.ServiceName),
		middleware.RequestContext(),
		middleware.RequestLogger(rc.Log),
		middleware.Metrics(rc.Metrics),
		middleware.CORS(rc.Config.CORS),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": rc.Config.App.Version})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rc.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(rc.Metrics.Handler()))

	api := r.Group("/api/v1", middleware.RateLimit(rc.Global))
	v1.Register(api, rc.Handlers, rc.Tokens, middleware.RateLimit(rc.Login))

	return r
}
