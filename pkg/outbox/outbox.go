// Package outbox публикует доменные события калькулятора в Kafka через таблицу outbox.
// Запись события создаётся в той же транзакции, что и изменение данных,
// отдельный OutboxWorker читает таблицу и отправляет сообщения.
package outbox

import (
	"encoding/json"
	"time"
)

// Outbox — запись таблицы outbox.
type Outbox struct {
	ID            string            // UUID записи
	AggregateType string            // Тип агрегата (calculation)
	AggregateID   string            // ID агрегата: id расчёта или пользователя
	EventType     string            // calculation.created / calculations.deleted / history.cleared
	Topic         string            // Kafka топик
	MessageKey    string            // Ключ сообщения (для партиционирования)
	Payload       []byte            // JSON payload
	Headers       map[string]string // trace_id, correlation_id, event_type
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil — ещё не отправлена
	RetryCount    int
	LastError     *string
}

// HeadersJSON возвращает headers в формате JSON для БД.
func (o *Outbox) HeadersJSON() ([]byte, error) {
	if o.Headers == nil {
		return nil, nil
	}
	return json.Marshal(o.Headers)
}

// SetHeadersFromJSON устанавливает headers из JSON.
func (o *Outbox) SetHeadersFromJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &o.Headers)
}
