package db

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"example.com/price-calculator/pkg/config"
)

// ConnectRedis создаёт клиент Redis и проверяет соединение.
// Клиент возвращается и при ошибке ping: rate limiter работает в режиме fail-open.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, fmt.Errorf("ошибка ping Redis %s: %w", cfg.Addr(), err)
	}

	return client, nil
}
