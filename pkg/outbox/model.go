package outbox

import "time"

// OutboxModel — GORM модель таблицы outbox.
type OutboxModel struct {
	ID            string     `gorm:"column:id;type:varchar(36);primaryKey"`
	AggregateType string     `gorm:"column:aggregate_type;type:varchar(50);not null;index:idx_outbox_aggregate"`
	AggregateID   string     `gorm:"column:aggregate_id;type:varchar(36);not null;index:idx_outbox_aggregate"`
	EventType     string     `gorm:"column:event_type;type:varchar(100);not null"`
	Topic         string     `gorm:"column:topic;type:varchar(100);not null"`
	MessageKey    string     `gorm:"column:message_key;type:varchar(100);not null"`
	Payload       []byte     `gorm:"column:payload;type:json;not null"`
	Headers       []byte     `gorm:"column:headers;type:json"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	ProcessedAt   *time.Time `gorm:"column:processed_at;index:idx_outbox_unprocessed"`
	RetryCount    int        `gorm:"column:retry_count;not null;default:0"`
	LastError     *string    `gorm:"column:last_error;type:text"`
}

// TableName возвращает имя таблицы в БД.
func (OutboxModel) TableName() string {
	return "outbox"
}

// Models возвращает модели пакета для AutoMigrate.
func Models() []any {
	return []any{&OutboxModel{}}
}

func (m *OutboxModel) toDomain() *Outbox {
	o := &Outbox{
		ID:            m.ID,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		EventType:     m.EventType,
		Topic:         m.Topic,
		MessageKey:    m.MessageKey,
		Payload:       m.Payload,
		CreatedAt:     m.CreatedAt,
		ProcessedAt:   m.ProcessedAt,
		RetryCount:    m.RetryCount,
		LastError:     m.LastError,
	}
	// Битые headers не мешают доставке payload.
	_ = o.SetHeadersFromJSON(m.Headers)
	return o
}

func modelFromDomain(o *Outbox) (*OutboxModel, error) {
	headers, err := o.HeadersJSON()
	if err != nil {
		return nil, err
	}

	return &OutboxModel{
		ID:            o.ID,
		AggregateType: o.AggregateType,
		AggregateID:   o.AggregateID,
		EventType:     o.EventType,
		Topic:         o.Topic,
		MessageKey:    o.MessageKey,
		Payload:       o.Payload,
		Headers:       headers,
		CreatedAt:     o.CreatedAt,
		ProcessedAt:   o.ProcessedAt,
		RetryCount:    o.RetryCount,
		LastError:     o.LastError,
	}, nil
}
