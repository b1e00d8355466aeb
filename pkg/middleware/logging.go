package middleware

import (
	"context"
	"path"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"example.com/price-calculator/pkg/logger"
)

// LoggingUnaryInterceptor пишет метод, код ответа и длительность вызова.
// trace_id и correlation_id берутся из контекста логгера.
func LoggingUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(ctx, info.FullMethod, err, time.Since(start), "gRPC запрос")
		return resp, err
	}
}

func LoggingStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(ss.Context(), info.FullMethod, err, time.Since(start), "gRPC stream")
		return err
	}
}

func logCall(ctx context.Context, fullMethod string, err error, d time.Duration, kind string) {
	log := logger.FromContext(ctx)
	code := status.Code(err)

	var event *zerolog.Event
	switch code {
	case codes.OK, codes.Canceled:
		event = log.Debug()
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		event = log.Error().Err(err)
	default:
		event = log.Warn().Err(err)
	}

	event.
		Str("grpc_service", path.Dir(fullMethod)[1:]).
		Str("grpc_method", path.Base(fullMethod)).
		Str("grpc_code", code.String()).
		Dur("duration", d).
		Msg(kind + " завершён")
}
