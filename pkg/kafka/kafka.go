// Package kafka — обёртка над kafka-go для публикации доменных событий.
// Сообщения несут trace_id и correlation_id из контекста запроса.
package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// TopicDLQ — Dead Letter Queue для событий, которые не удалось доставить.
const TopicDLQ = "delivery-prices.dlq"

// Ключи headers сообщений.
const (
	HeaderTraceID       = "trace_id"
	HeaderCorrelationID = "correlation_id"
	HeaderTimestamp     = "timestamp"
	HeaderEventType     = "event_type"

	HeaderDLQError         = "dlq_error"
	HeaderDLQOriginalTopic = "dlq_original_topic"
	HeaderDLQTimestamp     = "dlq_timestamp"
)

// Config — настройки подключения к Kafka.
type Config struct {
	Brokers []string
}

// Message — сообщение Kafka с заголовками в виде map.
type Message struct {
	Key     []byte
	Value   []byte
	Topic   string
	Headers map[string]string
	Time    time.Time
}

func (m *Message) toKafkaMessage() kafka.Message {
	headers := make([]kafka.Header, 0, len(m.Headers))
	for k, v := range m.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Topic:   m.Topic,
		Headers: headers,
		Time:    m.Time,
	}
}
