package healthcheck

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"example.com/price-calculator/pkg/logger"
)

// checkTimeout ограничивает одну проверку в Watch.
const checkTimeout = 5 * time.Second

// Update выполняет check и выставляет статус service в health сервере.
// Пустое имя сервиса означает статус сервера целиком.
func Update(ctx context.Context, srv *health.Server, service string, check Check) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := check(ctx); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("service", service).Msg("Сервис не готов")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	srv.SetServingStatus(service, status)
	return status
}

// Watch обновляет статус каждые interval до отмены ctx.
// Перед выходом сервер переводится в NOT_SERVING.
func Watch(ctx context.Context, srv *health.Server, service string, check Check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	Update(ctx, srv, service, check)
	for {
		select {
		case <-ctx.Done():
			srv.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
			return
		case <-ticker.C:
			Update(ctx, srv, service, check)
		}
	}
}
