// Package tracing настраивает OpenTelemetry с экспортом spans в Jaeger по OTLP.
//
// Spans создаются otelgin для HTTP запросов и use case слоем калькулятора.
//
//	shutdown, err := tracing.InitTracer(tracing.Config{ServiceName: "price-calculator", Endpoint: "localhost:4317", Enabled: true})
//	if err != nil { ... }
//	defer shutdown(context.Background())
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"example.com/price-calculator/pkg/logger"
)

// Config содержит настройки tracing.
type Config struct {
	ServiceName string
	Version     string
	Environment string
	Endpoint    string  // OTLP gRPC endpoint, например "localhost:4317"
	Enabled     bool    // false — no-op
	SampleRatio float64 // доля корневых spans; <= 0 или >= 1 — все
}

// ShutdownFunc сбрасывает накопленные spans и закрывает соединение.
type ShutdownFunc func(ctx context.Context) error

// InitTracer устанавливает глобальный TracerProvider и W3C propagator.
func InitTracer(cfg Config) (ShutdownFunc, error) {
	log := logger.With().Str("service", cfg.ServiceName).Logger()

	if !cfg.Enabled || cfg.Endpoint == "" {
		log.Info().Msg("Tracing отключен")
		return func(context.Context) error { return nil }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	res, err := newResource(cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Float64("sample_ratio", cfg.SampleRatio).
		Msg("Tracing инициализирован (Jaeger OTLP)")

	return func(ctx context.Context) error {
		log.Info().Msg("Завершение Tracing...")

		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Ошибка завершения TracerProvider")
		}

		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Ошибка закрытия gRPC соединения к Jaeger")
			return err
		}
		return nil
	}, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	version := cfg.Version
	if version == "" {
		version = "1.0.0"
	}
	env := cfg.Environment
	if env == "" {
		env = "development"
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
			semconv.DeploymentEnvironmentName(env),
		),
	)
}

// sampler уважает решение родительского span.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}
