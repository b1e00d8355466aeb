package outbox

import (
	"context"
	"errors"
	"time"

	"example.com/price-calculator/pkg/circuitbreaker"
	"example.com/price-calculator/pkg/kafka"
	"example.com/price-calculator/pkg/logger"
)

// ErrRetriesExhausted — причина отправки записи в DLQ.
var ErrRetriesExhausted = errors.New("превышен лимит попыток отправки")

// KafkaProducer — то, что нужно worker'у от kafka.Producer.
type KafkaProducer interface {
	SendMessage(ctx context.Context, msg *kafka.Message) error
	SendToDLQ(ctx context.Context, msg *kafka.Message, cause error) error
}

// WorkerConfig — настройки Outbox Worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxRetries — после стольких неудач запись уходит в DLQ.
	MaxRetries int
}

// DefaultWorkerConfig возвращает конфигурацию по умолчанию.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 1 * time.Second,
		BatchSize:    100,
		MaxRetries:   5,
	}
}

const (
	cleanupInterval  = 1 * time.Hour
	cleanupRetention = 7 * 24 * time.Hour
)

// OutboxWorker читает записи outbox и отправляет их в Kafka (at-least-once).
type OutboxWorker struct {
	repo     OutboxRepository
	producer KafkaProducer
	cfg      WorkerConfig
	name     string
}

// NewOutboxWorker создаёт worker. name используется в логах.
func NewOutboxWorker(repo OutboxRepository, producer KafkaProducer, cfg WorkerConfig, name string) *OutboxWorker {
	return &OutboxWorker{
		repo:     repo,
		producer: producer,
		cfg:      cfg,
		name:     name,
	}
}

// Run блокирует до отмены контекста.
func (w *OutboxWorker) Run(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info().
		Str("name", w.name).
		Dur("poll_interval", w.cfg.PollInterval).
		Int("batch_size", w.cfg.BatchSize).
		Msg("Запуск Outbox Worker")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("name", w.name).Msg("Остановка Outbox Worker")
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanupProcessed(ctx)
		}
	}
}

func (w *OutboxWorker) cleanupProcessed(ctx context.Context) {
	log := logger.FromContext(ctx)

	deleted, err := w.repo.DeleteProcessedBefore(ctx, time.Now().UTC().Add(-cleanupRetention))
	if err != nil {
		log.Error().Err(err).Str("name", w.name).Msg("Ошибка очистки outbox")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Str("name", w.name).Msg("Очистка обработанных записей outbox")
	}
}

func (w *OutboxWorker) processOutbox(ctx context.Context) {
	log := logger.FromContext(ctx)

	records, err := w.repo.GetUnprocessed(ctx, w.cfg.BatchSize)
	if err != nil {
		log.Error().Err(err).Str("name", w.name).Msg("Ошибка чтения outbox")
		return
	}
	if len(records) == 0 {
		return
	}

	log.Debug().Int("count", len(records)).Str("name", w.name).Msg("Обработка записей outbox")

	for _, record := range records {
		if ctx.Err() != nil {
			return
		}

		if record.RetryCount >= w.cfg.MaxRetries {
			w.deadLetter(ctx, record)
			continue
		}

		if err := w.ProcessSingle(ctx, record); errors.Is(err, circuitbreaker.ErrOpen) {
			// Kafka недоступна, остаток пачки ждёт следующего опроса.
			log.Warn().Str("name", w.name).Msg("Kafka недоступна, отправка outbox приостановлена")
			return
		}
	}
}

// deadLetter перекладывает запись в DLQ и снимает её с очереди.
// Если DLQ недоступна, запись остаётся и будет повторена на следующем опросе.
func (w *OutboxWorker) deadLetter(ctx context.Context, record *Outbox) {
	log := logger.FromContext(ctx).With().
		Str("outbox_id", record.ID).
		Str("event_type", record.EventType).
		Str("aggregate_id", record.AggregateID).
		Int("retry_count", record.RetryCount).
		Logger()

	if err := w.producer.SendToDLQ(ctx, toMessage(record), ErrRetriesExhausted); err != nil {
		log.Error().Err(err).Msg("Ошибка отправки записи outbox в DLQ")
		return
	}

	if err := w.repo.MarkProcessed(ctx, record.ID); err != nil {
		log.Error().Err(err).Msg("Ошибка пометки dead letter")
		return
	}

	log.Warn().Msg("Dead letter: превышен лимит попыток, запись отправлена в DLQ")
}

// ProcessSingle отправляет одну запись и отмечает результат в outbox.
func (w *OutboxWorker) ProcessSingle(ctx context.Context, record *Outbox) error {
	log := logger.FromContext(ctx)

	if err := w.producer.SendMessage(ctx, toMessage(record)); err != nil {
		// Отказ breaker'а не расходует попытки записи.
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return err
		}

		log.Error().
			Err(err).
			Str("outbox_id", record.ID).
			Str("topic", record.Topic).
			Msg("Ошибка отправки в Kafka")

		if markErr := w.repo.MarkFailed(ctx, record.ID, err); markErr != nil {
			log.Error().Err(markErr).Str("outbox_id", record.ID).Msg("Ошибка пометки outbox как failed")
		}
		return err
	}

	if err := w.repo.MarkProcessed(ctx, record.ID); err != nil {
		log.Error().Err(err).Str("outbox_id", record.ID).Msg("Ошибка пометки outbox как обработанной")
		return err
	}

	log.Debug().
		Str("outbox_id", record.ID).
		Str("topic", record.Topic).
		Str("event_type", record.EventType).
		Msg("Событие отправлено в Kafka")
	return nil
}

func toMessage(record *Outbox) *kafka.Message {
	headers := make(map[string]string, len(record.Headers))
	for k, v := range record.Headers {
		headers[k] = v
	}

	return &kafka.Message{
		Topic:   record.Topic,
		Key:     []byte(record.MessageKey),
		Value:   record.Payload,
		Headers: headers,
	}
}
