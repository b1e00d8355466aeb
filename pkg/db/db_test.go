package db

import (
	"context"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"

	"example.com/price-calculator/pkg/config"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		name     string
		driver   string
		expected string
		wantErr  bool
	}{
		{name: "mysql", driver: config.DriverMySQL, expected: "mysql"},
		{name: "postgres", driver: config.DriverPostgres, expected: "postgres"},
		{name: "неизвестный драйвер", driver: "sqlite", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Database: config.DatabaseConfig{Driver: tt.driver}}

			dialector, err := Dialector(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dialector.Name())
		})
	}
}

func TestOpen_PingsAndConfiguresPool(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	// gorm.Open пингует сам, второй ping — наш PingContext.
	mock.ExpectPing()
	mock.ExpectPing()

	dialector := mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true})
	gdb, err := Open(dialector, config.DatabaseConfig{MaxOpenConns: 3, MaxIdleConns: 1}, false)
	require.NoError(t, err)

	stats := sqlDB.Stats()
	assert.Equal(t, 3, stats.MaxOpenConnections)

	mock.ExpectClose()
	require.NoError(t, Close(gdb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)}

	client, err := ConnectRedis(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	mr.Close()

	broken, err := ConnectRedis(context.Background(), cfg)
	assert.Error(t, err)
	require.NotNil(t, broken)
	_ = broken.Close()
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
