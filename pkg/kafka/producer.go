package kafka

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/price-calculator/pkg/circuitbreaker"
	"example.com/price-calculator/pkg/logger"
)

// messageWriter — часть kafka.Writer, которой пользуется Producer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer отправляет сообщения в Kafka синхронно.
// Запись идёт через circuit breaker: при недоступных брокерах
// SendMessage сразу возвращает ошибку с circuitbreaker.ErrOpen.
type Producer struct {
	writer  messageWriter
	breaker *circuitbreaker.Breaker
	now     func() time.Time
}

// NewProducer создаёт Producer для указанных брокеров.
func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("не указаны брокеры Kafka")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{}, // один ключ — одна партиция
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info().Strs("brokers", cfg.Brokers).Msg("Создан Kafka Producer")

	return newProducer(writer), nil
}

func newProducer(w messageWriter) *Producer {
	return &Producer{
		writer:  w,
		breaker: circuitbreaker.New("kafka-producer"),
		now:     time.Now,
	}
}

// SendMessage отправляет сообщение. Недостающие trace_id, correlation_id
// и timestamp добавляются из контекста.
func (p *Producer) SendMessage(ctx context.Context, msg *Message) error {
	if msg.Headers == nil {
		msg.Headers = make(map[string]string)
	}

	if _, ok := msg.Headers[HeaderTraceID]; !ok {
		if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
			msg.Headers[HeaderTraceID] = traceID
		}
	}
	if _, ok := msg.Headers[HeaderCorrelationID]; !ok {
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			msg.Headers[HeaderCorrelationID] = correlationID
		}
	}
	if _, ok := msg.Headers[HeaderTimestamp]; !ok {
		msg.Headers[HeaderTimestamp] = p.now().UTC().Format(time.RFC3339Nano)
	}
	if msg.Time.IsZero() {
		msg.Time = p.now()
	}

	err := p.breaker.Execute(func() error {
		return p.writer.WriteMessages(ctx, msg.toKafkaMessage())
	})
	if err != nil {
		logger.Ctx(ctx).Error().
			Err(err).
			Str("topic", msg.Topic).
			Str("key", string(msg.Key)).
			Msg("Ошибка отправки сообщения в Kafka")
		return fmt.Errorf("ошибка отправки в Kafka: %w", err)
	}

	logger.Ctx(ctx).Debug().
		Str("topic", msg.Topic).
		Str("key", string(msg.Key)).
		Msg("Сообщение отправлено в Kafka")

	return nil
}

// SendToDLQ отправляет копию сообщения в TopicDLQ с описанием причины.
func (p *Producer) SendToDLQ(ctx context.Context, original *Message, cause error) error {
	headers := maps.Clone(original.Headers)
	if headers == nil {
		headers = make(map[string]string)
	}
	headers[HeaderDLQError] = cause.Error()
	headers[HeaderDLQOriginalTopic] = original.Topic
	headers[HeaderDLQTimestamp] = p.now().UTC().Format(time.RFC3339Nano)

	return p.SendMessage(ctx, &Message{
		Topic:   TopicDLQ,
		Key:     original.Key,
		Value:   original.Value,
		Headers: headers,
	})
}

// Close закрывает writer. Вызывается при завершении приложения.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		logger.Error().Err(err).Msg("Ошибка при закрытии Kafka Producer")
		return fmt.Errorf("ошибка закрытия producer: %w", err)
	}

	logger.Info().Msg("Kafka Producer закрыт")
	return nil
}
