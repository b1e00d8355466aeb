package healthcheck

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDatabase(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	mock.ExpectPing() // gorm.Open
	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, Database(gormDB)(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = Database(gormDB)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql ping")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	assert.NoError(t, Redis(rdb)(context.Background()))

	mr.Close()
	assert.Error(t, Redis(rdb)(context.Background()))
}

func TestComposite(t *testing.T) {
	var calls []string
	ok := func(name string) Check {
		return func(context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}
	failure := errors.New("redis down")

	check := Composite(ok("db"), nil, func(context.Context) error { return failure }, ok("never"))

	assert.ErrorIs(t, check(context.Background()), failure)
	assert.Equal(t, []string{"db"}, calls)
}
