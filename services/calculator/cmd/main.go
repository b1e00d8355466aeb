// Price Calculator — сервис расчёта стоимости доставки.
// HTTP API на gin, хранилище MySQL или PostgreSQL через GORM,
// доменные события через outbox в Kafka.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"

	"example.com/price-calculator/pkg/config"
	"example.com/price-calculator/pkg/db"
	"example.com/price-calculator/pkg/healthcheck"
	"example.com/price-calculator/pkg/kafka"
	"example.com/price-calculator/pkg/logger"
	"example.com/price-calculator/pkg/metrics"
	grpcmw "example.com/price-calculator/pkg/middleware"
	"example.com/price-calculator/pkg/outbox"
	"example.com/price-calculator/pkg/tracing"
	"example.com/price-calculator/pkg/transaction"
	"example.com/price-calculator/services/calculator/internal/domain"
	"example.com/price-calculator/services/calculator/internal/handler"
	"example.com/price-calculator/services/calculator/internal/middleware"
	"example.com/price-calculator/services/calculator/internal/pricing"
	"example.com/price-calculator/services/calculator/internal/repository"
	"example.com/price-calculator/services/calculator/internal/service"
	"example.com/price-calculator/services/calculator/internal/usecase"
)

const healthPollInterval = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:   cfg.App.LogLevel,
		Pretty:  cfg.App.LogPretty,
		Service: cfg.App.Name,
	})

	logger.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.Database.Driver).
		Int("port", cfg.HTTP.Port).
		Msg("Запуск Price Calculator")

	shutdownTracing, err := tracing.InitTracer(tracing.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Endpoint:    cfg.Jaeger.OTLPEndpoint(),
		Enabled:     cfg.Jaeger.Enabled,
		SampleRatio: cfg.Jaeger.SampleRatio,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Не удалось инициализировать tracing")
	}

	// === Хранилища ===

	gormDB, err := db.Connect(cfg, cfg.IsDevelopment())
	if err != nil {
		logger.Fatal().Err(err).Msg("Ошибка подключения к БД")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Подключение к БД установлено")

	if cfg.Database.AutoMigrate {
		if err := migrate(gormDB, cfg.Outbox.Enabled); err != nil {
			logger.Fatal().Err(err).Msg("Ошибка миграции схемы")
		}
	}

	redisClient, err := db.ConnectRedis(context.Background(), cfg.Redis)
	if err != nil {
		// Rate limiter пропускает запросы, пока Redis недоступен.
		logger.Warn().Err(err).Msg("Redis недоступен")
	}

	readiness := healthcheck.Composite(
		healthcheck.Database(gormDB),
		healthcheck.Redis(redisClient),
	)

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr(), cfg.App.Name,
			metrics.WithReadinessCheck(metrics.ReadinessChecker(readiness)))
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Ошибка Metrics Server")
			}
		}()
	}

	// === Слои приложения ===

	scope := transaction.NewReadCommittedScope(gormDB)

	opts := []service.Option{
		service.WithEngine(pricing.NewEngine(cfg.Pricing.VolumeRatio, cfg.Pricing.WeightRatio)),
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var wg sync.WaitGroup
	var producer *kafka.Producer

	if cfg.Outbox.Enabled {
		outboxRepo := outbox.NewOutboxRepository(gormDB, domain.AggregateCalculation)
		opts = append(opts, service.WithEventRecorder(
			outbox.NewRecorder(outboxRepo, domain.AggregateCalculation, cfg.Kafka.Topic)))

		producer, err = kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
		if err != nil {
			logger.Fatal().Err(err).Msg("Ошибка создания Kafka producer")
		}

		worker := outbox.NewOutboxWorker(outboxRepo, producer, outbox.WorkerConfig{
			PollInterval: cfg.Outbox.PollInterval,
			BatchSize:    cfg.Outbox.BatchSize,
			MaxRetries:   cfg.Outbox.MaxRetries,
		}, cfg.App.Name)

		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Outbox включён")
	}

	calcService := service.NewCalculationService(
		repository.NewGoodsRepository(gormDB),
		repository.NewCalculationsRepository(gormDB),
		scope,
		opts...,
	)

	var rateLimitMW *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimitMW = middleware.NewRateLimiter(middleware.RateLimitConfig{
			Redis:  redisClient,
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		})
		logger.Info().
			Int("limit", cfg.RateLimit.Limit).
			Dur("window", cfg.RateLimit.Window).
			Msg("Rate limiting включён")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Calculate:       usecase.NewCalculateHandler(calcService),
		GetHistory:      usecase.NewGetHistoryHandler(calcService),
		GetCalculations: usecase.NewGetCalculationsHandler(calcService),
		ClearHistory:    usecase.NewClearHistoryHandler(calcService, scope),
		RateLimitMW:     rateLimitMW,
		ReadinessCheck:  handler.ReadinessChecker(readiness),
		Debug:           cfg.IsDevelopment(),
	})

	// === Серверы ===

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr()).Msg("HTTP сервер запущен")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Ошибка HTTP сервера")
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = startHealthServer(ctx, cfg, readiness, &wg)
	}

	// === Graceful shutdown ===

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Получен сигнал завершения, останавливаем сервис...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Ошибка при остановке HTTP сервера")
	}

	// Worker и health watcher завершаются по отмене ctx.
	stop()
	wg.Wait()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error().Err(err).Msg("Ошибка закрытия Kafka producer")
		}
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Ошибка остановки Metrics Server")
		}
	}

	closeRedis(redisClient)

	if err := db.Close(gormDB); err != nil {
		logger.Error().Err(err).Msg("Ошибка закрытия БД")
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Ошибка остановки Tracing")
		}
	}

	logger.Info().Msg("Price Calculator остановлен")
}

// migrate создаёт таблицы goods, calculations и, при включённом outbox, outbox.
func migrate(gormDB *gorm.DB, withOutbox bool) error {
	models := repository.Models()
	if withOutbox {
		models = append(models, outbox.Models()...)
	}
	return gormDB.AutoMigrate(models...)
}

// startHealthServer поднимает gRPC сервер с grpc.health.v1.Health.
// Статус обновляется по readiness проверке до отмены ctx.
func startHealthServer(ctx context.Context, cfg *config.Config, readiness healthcheck.Check, wg *sync.WaitGroup) *grpc.Server {
	grpcServer := grpc.NewServer(grpcmw.ServerOptions()...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	listener, err := net.Listen("tcp", cfg.GRPC.Addr())
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.GRPC.Addr()).Msg("Ошибка создания listener")
	}

	go func() {
		logger.Info().Str("addr", cfg.GRPC.Addr()).Msg("gRPC health сервер запущен")
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error().Err(err).Msg("Ошибка gRPC сервера")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		healthcheck.Watch(ctx, healthServer, "", readiness, healthPollInterval)
	}()

	return grpcServer
}

func closeRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.Error().Err(err).Msg("Ошибка закрытия Redis")
	}
}
