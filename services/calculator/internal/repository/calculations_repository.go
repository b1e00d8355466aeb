package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"example.com/price-calculator/pkg/transaction"
	"example.com/price-calculator/services/calculator/internal/domain"
)

// CalculationModel — GORM модель для таблицы calculations.
// good_ids хранится JSON массивом.
type CalculationModel struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64           `gorm:"column:user_id;not null;index:idx_calculations_user_created,priority:1"`
	GoodIDs     []int64         `gorm:"column:good_ids;type:json;serializer:json;not null"`
	TotalVolume float64         `gorm:"column:total_volume;not null"`
	TotalWeight float64         `gorm:"column:total_weight;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(20,5);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null;index:idx_calculations_user_created,priority:2"`
}

// TableName возвращает имя таблицы в БД.
func (CalculationModel) TableName() string {
	return "calculations"
}

func (m *CalculationModel) toDomain() domain.Calculation {
	goodIDs := m.GoodIDs
	if goodIDs == nil {
		goodIDs = []int64{}
	}
	return domain.Calculation{
		ID:          m.ID,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		TotalVolume: m.TotalVolume,
		TotalWeight: m.TotalWeight,
		Price:       m.Price,
		GoodIDs:     goodIDs,
	}
}

func calculationModelFromDomain(c *domain.Calculation) *CalculationModel {
	return &CalculationModel{
		ID:          c.ID,
		UserID:      c.UserID,
		GoodIDs:     c.GoodIDs,
		TotalVolume: c.TotalVolume,
		TotalWeight: c.TotalWeight,
		Price:       c.Price,
		CreatedAt:   c.CreatedAt,
	}
}

func calculationsToDomain(models []CalculationModel) []domain.Calculation {
	out := make([]domain.Calculation, len(models))
	for i := range models {
		out[i] = models[i].toDomain()
	}
	return out
}

// calculationsRepository — GORM реализация CalculationsRepository.
type calculationsRepository struct {
	db *gorm.DB
}

// NewCalculationsRepository создаёт хранилище расчётов.
func NewCalculationsRepository(db *gorm.DB) CalculationsRepository {
	return &calculationsRepository{db: db}
}

// Add сохраняет расчёт.
func (r *calculationsRepository) Add(ctx context.Context, calculation *domain.Calculation) (int64, error) {
	model := calculationModelFromDomain(calculation)
	if err := transaction.DB(ctx, r.db).Create(model).Error; err != nil {
		return 0, err
	}
	return model.ID, nil
}

// Query возвращает страницу истории пользователя.
// При равном created_at порядок определяется id.
func (r *calculationsRepository) Query(ctx context.Context, filter domain.CalculationFilter) ([]domain.Calculation, error) {
	if filter.Limit <= 0 {
		return []domain.Calculation{}, nil
	}

	var models []CalculationModel
	if err := transaction.DB(ctx, r.db).
		Where("user_id = ?", filter.UserID).
		Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&models).Error; err != nil {
		return nil, err
	}

	return calculationsToDomain(models), nil
}

// GetByIDs возвращает найденные расчёты, владелец не проверяется.
func (r *calculationsRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Calculation, error) {
	if len(ids) == 0 {
		return []domain.Calculation{}, nil
	}

	var models []CalculationModel
	if err := transaction.DB(ctx, r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	return calculationsToDomain(models), nil
}

// Delete удаляет расчёты по идентификаторам.
func (r *calculationsRepository) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return transaction.DB(ctx, r.db).Where("id IN ?", ids).Delete(&CalculationModel{}).Error
}

// DeleteAllFromUser удаляет все расчёты пользователя.
func (r *calculationsRepository) DeleteAllFromUser(ctx context.Context, userID int64) error {
	return transaction.DB(ctx, r.db).Where("user_id = ?", userID).Delete(&CalculationModel{}).Error
}

// Models возвращает модели для AutoMigrate.
func Models() []any {
	return []any{&GoodModel{}, &CalculationModel{}}
}
