package repository

import (
	"context"

	"gorm.io/gorm"

	"example.com/price-calculator/pkg/transaction"
	"example.com/price-calculator/services/calculator/internal/domain"
)

// GoodModel — GORM модель для таблицы goods.
type GoodModel struct {
	ID     int64   `gorm:"column:id;primaryKey;autoIncrement"`
	UserID int64   `gorm:"column:user_id;not null;index"`
	Height float64 `gorm:"column:height;not null"`
	Length float64 `gorm:"column:length;not null"`
	Width  float64 `gorm:"column:width;not null"`
	Weight float64 `gorm:"column:weight;not null"`
}

// TableName возвращает имя таблицы в БД.
func (GoodModel) TableName() string {
	return "goods"
}

func (m *GoodModel) toDomain() domain.Good {
	return domain.Good{
		ID:     m.ID,
		UserID: m.UserID,
		Height: m.Height,
		Length: m.Length,
		Width:  m.Width,
		Weight: m.Weight,
	}
}

func goodModelFromDomain(g domain.Good) GoodModel {
	return GoodModel{
		ID:     g.ID,
		UserID: g.UserID,
		Height: g.Height,
		Length: g.Length,
		Width:  g.Width,
		Weight: g.Weight,
	}
}

// goodsBatchSize ограничивает число строк в одном INSERT:
// у MySQL не больше 65535 плейсхолдеров на запрос.
var goodsBatchSize = 1000

// goodsRepository — GORM реализация GoodsRepository.
type goodsRepository struct {
	db *gorm.DB
}

// NewGoodsRepository создаёт хранилище товаров.
func NewGoodsRepository(db *gorm.DB) GoodsRepository {
	return &goodsRepository{db: db}
}

// Add сохраняет товары пакетами по goodsBatchSize строк.
func (r *goodsRepository) Add(ctx context.Context, goods []domain.Good) ([]int64, error) {
	if len(goods) == 0 {
		return []int64{}, nil
	}

	models := make([]GoodModel, len(goods))
	for i, g := range goods {
		models[i] = goodModelFromDomain(g)
	}

	if err := transaction.DB(ctx, r.db).CreateInBatches(&models, goodsBatchSize).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	return ids, nil
}

// Query возвращает все товары пользователя.
func (r *goodsRepository) Query(ctx context.Context, userID int64) ([]domain.Good, error) {
	var models []GoodModel
	if err := transaction.DB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	goods := make([]domain.Good, len(models))
	for i := range models {
		goods[i] = models[i].toDomain()
	}
	return goods, nil
}

// Delete удаляет товары по идентификаторам.
func (r *goodsRepository) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return transaction.DB(ctx, r.db).Where("id IN ?", ids).Delete(&GoodModel{}).Error
}

// DeleteAllFromUser удаляет все товары пользователя.
func (r *goodsRepository) DeleteAllFromUser(ctx context.Context, userID int64) error {
	return transaction.DB(ctx, r.db).Where("user_id = ?", userID).Delete(&GoodModel{}).Error
}
