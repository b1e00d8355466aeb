// Package healthcheck содержит проверки зависимостей для /readyz и gRPC health.
package healthcheck

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Check — проверка одной зависимости.
type Check func(ctx context.Context) error

// Database проверяет доступность SQL базы через GORM.
func Database(db *gorm.DB) Check {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("%s: %w", db.Dialector.Name(), err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("%s ping: %w", db.Dialector.Name(), err)
		}
		return nil
	}
}

// Redis проверяет доступность Redis.
func Redis(rdb *redis.Client) Check {
	return func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		return nil
	}
}

// Composite выполняет проверки по порядку и возвращает первую ошибку.
// nil-проверки пропускаются.
func Composite(checks ...Check) Check {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
