package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "price-calculator", cfg.App.Name)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "3.27", cfg.Pricing.VolumeRatio.String())
	assert.Equal(t, "1.34", cfg.Pricing.WeightRatio.String())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Outbox.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "pg")
	t.Setenv("PRICING_VOLUME_RATIO", "5.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Contains(t, cfg.Postgres.DSN(), "host=pg")
	assert.Equal(t, "5.5", cfg.Pricing.VolumeRatio.String())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "неизвестный драйвер", key: "DB_DRIVER", value: "oracle"},
		{name: "нулевой коэффициент объёма", key: "PRICING_VOLUME_RATIO", value: "0"},
		{name: "отрицательный коэффициент веса", key: "PRICING_WEIGHT_RATIO", value: "-1"},
		{name: "нечисловой коэффициент", key: "PRICING_WEIGHT_RATIO", value: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMySQLConfig_DSN(t *testing.T) {
	cfg := MySQLConfig{Host: "db", Port: 3307, User: "u", Password: "p", Database: "calc"}
	assert.Equal(t, "u:p@tcp(db:3307)/calc?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}
