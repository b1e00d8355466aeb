package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"example.com/price-calculator/pkg/logger"
)

var unaryInfo = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func TestTracingUnaryInterceptor(t *testing.T) {
	tests := []struct {
		name            string
		md              metadata.MD
		wantTrace       string
		wantCorrelation string
	}{
		{
			name:            "идентификаторы из metadata",
			md:              metadata.Pairs(TraceIDKey, "trace-1", CorrelationIDKey, "corr-1"),
			wantTrace:       "trace-1",
			wantCorrelation: "corr-1",
		},
		{
			name:            "correlation_id по trace_id",
			md:              metadata.Pairs(TraceIDKey, "trace-2"),
			wantTrace:       "trace-2",
			wantCorrelation: "trace-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), tt.md)

			var traceID, correlationID string
			_, err := TracingUnaryInterceptor()(ctx, nil, unaryInfo, func(ctx context.Context, _ any) (any, error) {
				traceID = logger.TraceIDFromContext(ctx)
				correlationID = logger.CorrelationIDFromContext(ctx)
				return nil, nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantTrace, traceID)
			assert.Equal(t, tt.wantCorrelation, correlationID)
		})
	}
}

func TestTracingUnaryInterceptor_GeneratesTraceID(t *testing.T) {
	var traceID string
	_, err := TracingUnaryInterceptor()(context.Background(), nil, unaryInfo, func(ctx context.Context, _ any) (any, error) {
		traceID = logger.TraceIDFromContext(ctx)
		return nil, nil
	})

	require.NoError(t, err)
	assert.Len(t, traceID, 36)
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	resp, err := RecoveryUnaryInterceptor()(context.Background(), nil, unaryInfo, func(context.Context, any) (any, error) {
		panic("сломалось")
	})

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, err.Error(), "сломалось")
}

func TestLoggingUnaryInterceptor_PassesThrough(t *testing.T) {
	want := status.Error(codes.NotFound, "нет")

	resp, err := LoggingUnaryInterceptor()(context.Background(), "req", unaryInfo, func(_ context.Context, req any) (any, error) {
		return req, want
	})

	assert.Equal(t, "req", resp)
	assert.Equal(t, want, err)
}

func TestInjectTraceMetadata(t *testing.T) {
	ctx := logger.NewContextWithIDs(context.Background(), "trace-1", "corr-1")

	md, ok := metadata.FromOutgoingContext(InjectTraceMetadata(ctx))

	require.True(t, ok)
	assert.Equal(t, []string{"trace-1"}, md.Get(TraceIDKey))
	assert.Equal(t, []string{"corr-1"}, md.Get(CorrelationIDKey))

	_, ok = metadata.FromOutgoingContext(InjectTraceMetadata(context.Background()))
	assert.False(t, ok)
}
