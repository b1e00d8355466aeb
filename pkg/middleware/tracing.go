package middleware

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"example.com/price-calculator/pkg/logger"
)

// Ключи metadata, совпадают с HTTP заголовками X-Trace-ID и X-Correlation-ID.
const (
	TraceIDKey       = "x-trace-id"
	CorrelationIDKey = "x-correlation-id"
)

// TracingUnaryInterceptor переносит trace_id и correlation_id из metadata
// в контекст логгера. Отсутствующий trace_id генерируется.
func TracingUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(withTraceIDs(ctx), req)
	}
}

func TracingStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, &contextStream{ServerStream: ss, ctx: withTraceIDs(ss.Context())})
	}
}

func withTraceIDs(ctx context.Context) context.Context {
	var traceID, correlationID string

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(TraceIDKey); len(v) > 0 {
			traceID = v[0]
		}
		if v := md.Get(CorrelationIDKey); len(v) > 0 {
			correlationID = v[0]
		}
	}

	if traceID == "" {
		traceID = uuid.New().String()
	}
	if correlationID == "" {
		correlationID = traceID
	}

	return logger.NewContextWithIDs(ctx, traceID, correlationID)
}

// InjectTraceMetadata кладёт идентификаторы из контекста в исходящую metadata.
func InjectTraceMetadata(ctx context.Context) context.Context {
	pairs := []string{}
	if id := logger.TraceIDFromContext(ctx); id != "" {
		pairs = append(pairs, TraceIDKey, id)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		pairs = append(pairs, CorrelationIDKey, id)
	}
	if len(pairs) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

// contextStream подменяет контекст stream.
type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextStream) Context() context.Context {
	return s.ctx
}
