package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/decision-api/internal/handler"
	"github.com/clinicore/decision-api/internal/middleware"
	"github.com/clinicore/decision-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit middleware.RateLimiterConfig
	CORS      middleware.CORSConfig
	SizeLimit middleware.SizeLimitConfig
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		RateLimit: middleware.DefaultRateLimiterConfig(),
		CORS:      middleware.DefaultCORSConfig(),
		SizeLimit: middleware.DefaultSizeLimitConfig(),
		Timeout:   30 * time.Second,
	}
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	aiH      Handler
	patientH Handler
	consultH Handler
	h        *handler.Handler
	metrics  *metrics.Metrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	aiH Handler,
	patientH Handler,
	consultH Handler,
	h *handler.Handler,
	m *metrics.Metrics,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		aiH:      aiH,
		patientH: patientH,
		consultH: consultH,
		h:        h,
		metrics:  m,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
		middleware.SizeLimit(config.SizeLimit),
	)

	engine.Use(middleware.CORS(config.CORS))

	rateLimiter := middleware.NewRateLimiter(config.RateLimit)
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// All decision and record routes require an authenticated caller.
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.aiH.RegisterRoutes(protected)
	r.patientH.RegisterRoutes(protected)
	r.consultH.RegisterRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.HTTPErrorsTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
