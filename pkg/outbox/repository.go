package outbox

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"example.com/price-calculator/pkg/transaction"
)

// ErrOutboxNotFound — запись outbox не найдена.
var ErrOutboxNotFound = errors.New("запись outbox не найдена")

// cleanupBatchSize ограничивает одно удаление, чтобы не держать длинные блокировки.
const cleanupBatchSize = 1000

// OutboxRepository — хранилище записей outbox.
type OutboxRepository interface {
	// Create пишет запись. Если в ctx есть транзакция, запись попадает в неё.
	Create(ctx context.Context, record *Outbox) error

	// GetUnprocessed возвращает неотправленные записи, сначала с меньшим числом попыток.
	GetUnprocessed(ctx context.Context, limit int) ([]*Outbox, error)

	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, err error) error

	// DeleteProcessedBefore удаляет отправленные записи старше before.
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

type outboxRepository struct {
	db            *gorm.DB
	aggregateType string
}

// NewOutboxRepository создаёт GORM репозиторий outbox для одного типа агрегата.
func NewOutboxRepository(db *gorm.DB, aggregateType string) OutboxRepository {
	return &outboxRepository{db: db, aggregateType: aggregateType}
}

func (r *outboxRepository) Create(ctx context.Context, record *Outbox) error {
	model, err := modelFromDomain(record)
	if err != nil {
		return err
	}
	if err := transaction.DB(ctx, r.db).Create(model).Error; err != nil {
		return err
	}
	record.CreatedAt = model.CreatedAt
	return nil
}

func (r *outboxRepository) GetUnprocessed(ctx context.Context, limit int) ([]*Outbox, error) {
	var models []OutboxModel

	if err := r.db.WithContext(ctx).
		Where("processed_at IS NULL AND aggregate_type = ?", r.aggregateType).
		Order("retry_count ASC, created_at ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*Outbox, len(models))
	for i := range models {
		result[i] = models[i].toDomain()
	}
	return result, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&OutboxModel{}).
		Where("id = ?", id).
		Update("processed_at", time.Now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOutboxNotFound
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, err error) error {
	result := r.db.WithContext(ctx).Model(&OutboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  err.Error(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOutboxNotFound
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("processed_at IS NOT NULL AND processed_at < ? AND aggregate_type = ?", before, r.aggregateType).
		Limit(cleanupBatchSize).
		Delete(&OutboxModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
