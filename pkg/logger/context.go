package logger

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	// traceIDKey — идентификатор запроса, сквозной для HTTP, gRPC и Kafka.
	traceIDKey ctxKey = "trace_id"

	// correlationIDKey связывает несколько запросов одной операции клиента.
	correlationIDKey ctxKey = "correlation_id"

	loggerKey ctxKey = "logger"
)

// WithTraceID добавляет trace_id в контекст.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext извлекает trace_id. Пустая строка, если его нет.
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithCorrelationID добавляет correlation_id в контекст.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext извлекает correlation_id. Пустая строка, если его нет.
func CorrelationIDFromContext(ctx context.Context) string {
	if correlationID, ok := ctx.Value(correlationIDKey).(string); ok {
		return correlationID
	}
	return ""
}

// NewContextWithIDs добавляет в контекст непустые trace_id и correlation_id.
func NewContextWithIDs(ctx context.Context, traceID, correlationID string) context.Context {
	if traceID != "" {
		ctx = WithTraceID(ctx, traceID)
	}
	if correlationID != "" {
		ctx = WithCorrelationID(ctx, correlationID)
	}
	return ctx
}

// WithLogger кладёт настроенный логгер в контекст.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext возвращает логгер из контекста (или глобальный)
// с уже добавленными trace_id и correlation_id.
//
//	func (s *calculationService) SaveCalculation(ctx context.Context, ...) {
//	    log := logger.FromContext(ctx)
//	    log.Info().Int64("user_id", userID).Msg("Расчёт сохранён")
//	}
func FromContext(ctx context.Context) zerolog.Logger {
	l, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		l = log
	}

	traceID := TraceIDFromContext(ctx)
	correlationID := CorrelationIDFromContext(ctx)
	if traceID == "" && correlationID == "" {
		return l
	}

	lctx := l.With()
	if traceID != "" {
		lctx = lctx.Str("trace_id", traceID)
	}
	if correlationID != "" {
		lctx = lctx.Str("correlation_id", correlationID)
	}
	return lctx.Logger()
}

// Ctx возвращает указатель на логгер из контекста (аналог zerolog.Ctx).
func Ctx(ctx context.Context) *zerolog.Logger {
	l := FromContext(ctx)
	return &l
}
