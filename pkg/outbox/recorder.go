package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/price-calculator/pkg/kafka"
	"example.com/price-calculator/pkg/logger"
)

// Recorder превращает доменное событие в запись outbox.
// Вызывается внутри транзакции бизнес-операции: если она откатится,
// событие тоже не будет опубликовано.
type Recorder struct {
	repo          OutboxRepository
	aggregateType string
	topic         string
	now           func() time.Time
}

// NewRecorder создаёт Recorder для агрегата aggregateType, события уходят в topic.
func NewRecorder(repo OutboxRepository, aggregateType, topic string) *Recorder {
	return &Recorder{
		repo:          repo,
		aggregateType: aggregateType,
		topic:         topic,
		now:           time.Now,
	}
}

// Record сериализует payload в JSON и сохраняет запись outbox.
// Ключ сообщения — aggregateID, чтобы события одного агрегата шли в одну партицию.
func (r *Recorder) Record(ctx context.Context, aggregateID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события %s: %w", eventType, err)
	}

	headers := map[string]string{kafka.HeaderEventType: eventType}
	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		headers[kafka.HeaderTraceID] = traceID
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		headers[kafka.HeaderCorrelationID] = correlationID
	}

	record := &Outbox{
		ID:            uuid.New().String(),
		AggregateType: r.aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         r.topic,
		MessageKey:    aggregateID,
		Payload:       data,
		Headers:       headers,
		CreatedAt:     r.now().UTC(),
	}

	if err := r.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("ошибка записи события %s в outbox: %w", eventType, err)
	}

	logger.Ctx(ctx).Debug().
		Str("outbox_id", record.ID).
		Str("event_type", eventType).
		Str("aggregate_id", aggregateID).
		Msg("Событие записано в outbox")

	return nil
}

// NopRecorder ничего не записывает. Используется, когда outbox выключен.
type NopRecorder struct{}

// Record всегда возвращает nil.
func (NopRecorder) Record(context.Context, string, string, any) error {
	return nil
}
