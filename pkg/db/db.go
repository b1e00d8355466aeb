// Package db открывает подключения к SQL базе (MySQL или PostgreSQL) и Redis.
package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"example.com/price-calculator/pkg/config"
)

// pingTimeout ограничивает проверку соединения при старте.
const pingTimeout = 5 * time.Second

// Dialector возвращает GORM диалект для драйвера из конфигурации.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.MySQL.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.Postgres.DSN()), nil
	default:
		return nil, fmt.Errorf("неизвестный драйвер БД: %q", cfg.Database.Driver)
	}
}

// Connect открывает подключение к БД, проверяет его через PingContext
// и настраивает пул соединений.
func Connect(cfg *config.Config, debug bool) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	return Open(dialector, cfg.Database, debug)
}

// Open открывает подключение с уже готовым диалектом.
func Open(dialector gorm.Dialector, cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к %s: %w", dialector.Name(), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения sql.DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ошибка ping %s: %w", dialector.Name(), err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// Close закрывает пул соединений GORM.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
