package middleware

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"example.com/price-calculator/pkg/logger"
)

// errPanic отдаётся клиенту вместо деталей паники.
var errPanic = status.Error(codes.Internal, "Внутренняя ошибка сервера")

// RecoveryUnaryInterceptor превращает панику в codes.Internal.
func RecoveryUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ctx, info.FullMethod, r)
				err = errPanic
			}
		}()
		return handler(ctx, req)
	}
}

func RecoveryStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ss.Context(), info.FullMethod, r)
				err = errPanic
			}
		}()
		return handler(srv, ss)
	}
}

func logPanic(ctx context.Context, method string, r any) {
	logger.Ctx(ctx).Error().
		Str("grpc_method", method).
		Interface("panic", r).
		Str("stack", string(debug.Stack())).
		Msg("Перехвачена паника в gRPC handler")
}
