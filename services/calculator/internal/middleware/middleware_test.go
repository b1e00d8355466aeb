package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/price-calculator/pkg/logger"
)

// =====================================
// Tracing
// =====================================

func TestTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		headers         map[string]string
		wantTrace       string
		wantCorrelation string
	}{
		{
			name:            "заголовки из запроса",
			headers:         map[string]string{HeaderTraceID: "trace-1", HeaderCorrelationID: "corr-1"},
			wantTrace:       "trace-1",
			wantCorrelation: "corr-1",
		},
		{
			name:            "X-Request-ID как trace_id",
			headers:         map[string]string{HeaderRequestID: "req-1"},
			wantTrace:       "req-1",
			wantCorrelation: "req-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxTrace, ctxCorrelation string

			r := gin.New()
			r.Use(Tracing())
			r.GET("/", func(c *gin.Context) {
				ctxTrace = logger.TraceIDFromContext(c.Request.Context())
				ctxCorrelation = logger.CorrelationIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantTrace, ctxTrace)
			assert.Equal(t, tt.wantCorrelation, ctxCorrelation)
			assert.Equal(t, tt.wantTrace, w.Header().Get(HeaderTraceID))
		})
	}
}

func TestTracing_GeneratesTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Tracing())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Header().Get(HeaderTraceID), 36)
	assert.Equal(t, w.Header().Get(HeaderTraceID), w.Header().Get(HeaderCorrelationID))
}

// =====================================
// RateLimiter
// =====================================

func newLimitedRouter(t *testing.T, limit int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := NewRateLimiter(RateLimitConfig{Redis: rdb, Limit: limit, Window: time.Minute})

	r := gin.New()
	r.Use(limiter.Handle())
	r.POST("/v1/delivery-prices/calculate", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, mr
}

func doRequest(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/delivery-prices/calculate", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksExcessRequests(t *testing.T) {
	r, mr := newLimitedRouter(t, 3)

	for i := 0; i < 3; i++ {
		w := doRequest(r, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "запрос %d должен пройти", i+1)
	}

	w := doRequest(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	// Другой IP считается отдельно.
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2").Code)

	// Окно истекло — счётчик сброшен.
	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1").Code)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	r, mr := newLimitedRouter(t, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1").Code)
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})

	assert.Equal(t, 100, limiter.limit)
	assert.Equal(t, time.Minute, limiter.window)
	assert.Equal(t, "calculator:rate:", limiter.keyPrefix)
}
