// Package config загружает конфигурацию калькулятора из переменных окружения.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Поддерживаемые драйверы БД.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config содержит полную конфигурацию приложения.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	GRPC      GRPCConfig
	Database  DatabaseConfig
	MySQL     MySQLConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Outbox    OutboxConfig
	RateLimit RateLimitConfig
	Pricing   PricingConfig
	Jaeger    JaegerConfig
	Metrics   MetricsConfig
}

// AppConfig содержит общие настройки приложения.
type AppConfig struct {
	Name      string `env:"APP_NAME" envDefault:"price-calculator"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// HTTPConfig содержит настройки HTTP API.
type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Addr возвращает адрес HTTP сервера.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GRPCConfig содержит настройки gRPC сервера (health service).
type GRPCConfig struct {
	Enabled bool   `env:"GRPC_ENABLED" envDefault:"true"`
	Host    string `env:"GRPC_HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"GRPC_PORT" envDefault:"50051"`
}

// Addr возвращает адрес gRPC сервера.
func (c GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig выбирает драйвер и общие параметры пула соединений.
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"mysql"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// MySQLConfig содержит настройки подключения к MySQL.
type MySQLConfig struct {
	Host     string `env:"MYSQL_HOST" envDefault:"localhost"`
	Port     int    `env:"MYSQL_PORT" envDefault:"3306"`
	User     string `env:"MYSQL_USER" envDefault:"root"`
	Password string `env:"MYSQL_PASSWORD" envDefault:"root"`
	Database string `env:"MYSQL_DATABASE" envDefault:"price_calculator"`
}

// DSN возвращает строку подключения к MySQL.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// PostgresConfig содержит настройки подключения к PostgreSQL.
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Database string `env:"POSTGRES_DATABASE" envDefault:"price_calculator"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

// DSN возвращает строку подключения к PostgreSQL.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig содержит настройки подключения к Redis.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Addr возвращает адрес Redis сервера.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig содержит настройки подключения к Kafka.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"delivery-prices.events"`
}

// OutboxConfig управляет публикацией доменных событий через outbox.
// При Enabled=false события не пишутся и worker не запускается.
type OutboxConfig struct {
	Enabled      bool          `env:"OUTBOX_ENABLED" envDefault:"false"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	MaxRetries   int           `env:"OUTBOX_MAX_RETRIES" envDefault:"5"`
}

// RateLimitConfig содержит настройки ограничения частоты запросов.
type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Limit   int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// PricingConfig содержит коэффициенты перевода объёма и веса в цену.
type PricingConfig struct {
	VolumeRatio decimal.Decimal `env:"PRICING_VOLUME_RATIO" envDefault:"3.27"`
	WeightRatio decimal.Decimal `env:"PRICING_WEIGHT_RATIO" envDefault:"1.34"`
}

// JaegerConfig содержит настройки трассировки Jaeger.
type JaegerConfig struct {
	Enabled     bool    `env:"JAEGER_ENABLED" envDefault:"true"`
	Host        string  `env:"JAEGER_HOST" envDefault:"localhost"`
	OTLPPort    int     `env:"JAEGER_OTLP_PORT" envDefault:"4317"`
	SampleRatio float64 `env:"JAEGER_SAMPLE_RATIO" envDefault:"1"` // доля трасс, 1 — все
}

// OTLPEndpoint возвращает OTLP gRPC endpoint для Jaeger.
func (c JaegerConfig) OTLPEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.OTLPPort)
}

// MetricsConfig содержит настройки Prometheus метрик.
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	Port    int  `env:"METRICS_PORT" envDefault:"9090"`
}

// Addr возвращает адрес для Metrics HTTP сервера.
func (c MetricsConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load загружает конфигурацию из переменных окружения.
// Если рядом лежит .env файл, он подхватывается первым.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse()
}

// LoadFromFile загружает конфигурацию из указанного .env файла.
func LoadFromFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("ошибка загрузки .env файла %s: %w", path, err)
	}
	return parse()
}

func parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate проверяет значения, которые env не может проверить сам.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("неизвестный драйвер БД: %q", c.Database.Driver)
	}

	if !c.Pricing.VolumeRatio.IsPositive() || !c.Pricing.WeightRatio.IsPositive() {
		return fmt.Errorf("коэффициенты цены должны быть положительными")
	}

	return nil
}

// IsDevelopment возвращает true, если приложение запущено в development режиме.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction возвращает true, если приложение запущено в production режиме.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
