package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"example.com/price-calculator/pkg/metrics"
	"example.com/price-calculator/services/calculator/internal/middleware"
)

const serviceName = "price-calculator"

// ReadinessChecker — функция проверки готовности сервиса.
type ReadinessChecker func(ctx context.Context) error

// Router — HTTP роутер калькулятора.
type Router struct {
	engine         *gin.Engine
	prices         *DeliveryPriceHandler
	rateLimitMW    *middleware.RateLimiter
	readinessCheck ReadinessChecker
}

// RouterConfig — параметры для создания роутера.
type RouterConfig struct {
	Calculate       Calculator
	GetHistory      HistoryReader
	GetCalculations CalculationsReader
	ClearHistory    HistoryCleaner
	RateLimitMW     *middleware.RateLimiter // nil — без ограничения
	ReadinessCheck  ReadinessChecker        // опциональная проверка для /readyz
	Debug           bool
}

// NewRouter создаёт и настраивает HTTP роутер.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(serviceName))
	engine.Use(metrics.GinMetricsMiddleware(serviceName))
	engine.Use(middleware.Tracing())

	r := &Router{
		engine:         engine,
		prices:         NewDeliveryPriceHandler(cfg.Calculate, cfg.GetHistory, cfg.GetCalculations, cfg.ClearHistory),
		rateLimitMW:    cfg.RateLimitMW,
		readinessCheck: cfg.ReadinessCheck,
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Health endpoints без rate limiting
	r.engine.GET("/health", r.healthCheck)
	r.engine.GET("/healthz", r.livenessCheck)
	r.engine.GET("/readyz", r.readinessCheckHandler)

	v1 := r.engine.Group("/v1")
	if r.rateLimitMW != nil {
		v1.Use(r.rateLimitMW.Handle())
	}

	prices := v1.Group("/delivery-prices")
	{
		prices.POST("/calculate", r.prices.Calculate)
		prices.POST("/get-history", r.prices.GetHistory)
		prices.POST("/clear-history", r.prices.ClearHistory)
		prices.POST("/get-calculations", r.prices.GetCalculations)
	}
}

// Engine возвращает Gin engine для запуска сервера.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}

func (r *Router) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (r *Router) readinessCheckHandler(c *gin.Context) {
	if r.readinessCheck == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := r.readinessCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
