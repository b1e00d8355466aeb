// Package middleware содержит gRPC interceptors: recovery, trace-идентификаторы
// в контексте логгера и логирование вызовов.
package middleware

import (
	"google.golang.org/grpc"
)

// UnaryInterceptors возвращает цепочку для unary RPC.
// Recovery идёт первым, чтобы ловить паники всех остальных.
func UnaryInterceptors() []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		RecoveryUnaryInterceptor(),
		TracingUnaryInterceptor(),
		LoggingUnaryInterceptor(),
	}
}

// StreamInterceptors возвращает цепочку для stream RPC (health Watch).
func StreamInterceptors() []grpc.StreamServerInterceptor {
	return []grpc.StreamServerInterceptor{
		RecoveryStreamInterceptor(),
		TracingStreamInterceptor(),
		LoggingStreamInterceptor(),
	}
}

// ServerOptions подключает обе цепочки к grpc.Server.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryInterceptors()...),
		grpc.ChainStreamInterceptor(StreamInterceptors()...),
	}
}
