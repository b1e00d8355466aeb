package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"example.com/price-calculator/pkg/logger"
)

// incrWithTTL увеличивает счётчик окна и ставит TTL при первом запросе.
var incrWithTTL = redis.NewScript(`
	local current = redis.call("INCR", KEYS[1])
	if current == 1 then
		redis.call("EXPIRE", KEYS[1], ARGV[1])
	end
	return current
`)

// RateLimiter ограничивает число запросов с одного IP в фиксированном окне.
// Счётчики хранятся в Redis. Если Redis недоступен, запросы пропускаются.
type RateLimiter struct {
	redis     *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

// RateLimitConfig — параметры RateLimiter.
type RateLimitConfig struct {
	Redis     *redis.Client
	Limit     int           // по умолчанию 100
	Window    time.Duration // по умолчанию 1 минута
	KeyPrefix string        // по умолчанию "calculator:rate:"
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window < time.Second {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "calculator:rate:"
	}

	return &RateLimiter{
		redis:     cfg.Redis,
		limit:     cfg.Limit,
		window:    cfg.Window,
		keyPrefix: cfg.KeyPrefix,
	}
}

// Handle возвращает gin middleware.
func (m *RateLimiter) Handle() gin.HandlerFunc {
	windowSec := strconv.Itoa(int(m.window.Seconds()))

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		count, err := m.hit(ctx, m.keyPrefix+clientIP)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("Ошибка проверки rate limit, запрос пропущен")
			c.Next()
			return
		}

		remaining := max(m.limit-count, 0)
		c.Header("X-RateLimit-Limit", strconv.Itoa(m.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > m.limit {
			logger.Ctx(ctx).Warn().
				Str("client_ip", clientIP).
				Int("limit", m.limit).
				Msg("Rate limit превышен")

			c.Header("Retry-After", windowSec)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Превышен лимит запросов. Попробуйте через " + windowSec + " секунд",
			})
			return
		}

		c.Next()
	}
}

func (m *RateLimiter) hit(ctx context.Context, key string) (int, error) {
	return incrWithTTL.Run(ctx, m.redis, []string{key}, int(m.window.Seconds())).Int()
}
