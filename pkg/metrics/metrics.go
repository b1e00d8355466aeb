// Package metrics содержит Prometheus метрики калькулятора и HTTP сервер
// для /metrics и health-проб.
//
// Метрики запросов общие для HTTP и gRPC, доменные метрики описывают
// сохранённые расчёты и очистку истории.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/price-calculator/pkg/logger"
)

// =============================================================================
// Метрики запросов
// =============================================================================

var (
	// RequestsTotal — количество запросов по сервису, методу и статусу.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Общее количество запросов по сервису, методу и статусу",
		},
		[]string{"service", "method", "status"},
	)

	// RequestDuration — время обработки запроса.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Время выполнения запроса в секундах",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method"},
	)
)

// =============================================================================
// Доменные метрики
// =============================================================================

var (
	// CalculationsSaved — количество сохранённых расчётов.
	CalculationsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calculations_saved_total",
		Help: "Количество сохранённых расчётов стоимости доставки",
	})

	// CalculationPrice — распределение рассчитанных цен.
	CalculationPrice = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "calculation_price",
		Help:    "Рассчитанная стоимость доставки",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// HistoryCleared — успешные очистки истории.
	// mode: all — вся история пользователя, selected — по списку id.
	HistoryCleared = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "history_cleared_total",
		Help: "Количество очисток истории расчётов",
	}, []string{"mode"})

	// ClearHistoryRejected — отклонённые запросы очистки (not_found / forbidden).
	ClearHistoryRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clear_history_rejected_total",
		Help: "Количество отклонённых запросов очистки истории",
	}, []string{"reason"})
)

// RecordRequest записывает метрики одного запроса.
// status — "success" или "error".
func RecordRequest(service, method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(service, method, status).Inc()
	RequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordCalculation записывает метрики сохранённого расчёта.
func RecordCalculation(price float64) {
	CalculationsSaved.Inc()
	CalculationPrice.Observe(price)
}

// GinMetricsMiddleware собирает requests_total и request_duration_seconds
// для HTTP маршрутов.
func GinMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := "success"
		if c.Writer.Status() >= 400 {
			status = "error"
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		RecordRequest(service, path, status, time.Since(start))
	}
}

// =============================================================================
// HTTP сервер метрик
// =============================================================================

// ReadinessChecker возвращает nil, если сервис готов принимать трафик.
type ReadinessChecker func(ctx context.Context) error

// Server — HTTP сервер для /metrics, /health, /healthz и /readyz.
type Server struct {
	httpServer     *http.Server
	service        string
	readinessCheck ReadinessChecker
}

// Option настраивает Server.
type Option func(*Server)

// WithReadinessCheck подключает проверку готовности к /readyz.
func WithReadinessCheck(checker ReadinessChecker) Option {
	return func(s *Server) {
		s.readinessCheck = checker
	}
}

// NewServer создаёт сервер метрик на addr.
func NewServer(addr, service string, opts ...Option) *Server {
	s := &Server{service: service}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler возвращает HTTP handler сервера (используется в тестах).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "alive")
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.readinessCheck == nil {
			writeStatus(w, http.StatusOK, "ready")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := s.readinessCheck(ctx); err != nil {
			// Детали ошибки наружу не отдаём.
			logger.Warn().Err(err).Str("service", s.service).Msg("Сервис не готов")
			writeStatus(w, http.StatusServiceUnavailable, "not_ready")
			return
		}

		writeStatus(w, http.StatusOK, "ready")
	})

	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
}

// Start запускает сервер. Блокирует до остановки.
func (s *Server) Start() error {
	logger.Info().
		Str("service", s.service).
		Str("addr", s.httpServer.Addr).
		Msg("Запуск Metrics Server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
