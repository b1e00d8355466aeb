// Package repository содержит хранилища товаров и расчётов.
// Все методы берут активную транзакцию из контекста (transaction.DB).
package repository

import (
	"context"

	"example.com/price-calculator/services/calculator/internal/domain"
)

// GoodsRepository — хранилище товаров.
type GoodsRepository interface {
	// Add сохраняет товары и возвращает присвоенные идентификаторы в том же порядке.
	Add(ctx context.Context, goods []domain.Good) ([]int64, error)

	// Query возвращает все товары пользователя.
	Query(ctx context.Context, userID int64) ([]domain.Good, error)

	// Delete удаляет товары по идентификаторам. Отсутствующие id игнорируются.
	Delete(ctx context.Context, ids []int64) error

	// DeleteAllFromUser удаляет все товары пользователя.
	DeleteAllFromUser(ctx context.Context, userID int64) error
}

// CalculationsRepository — хранилище расчётов.
type CalculationsRepository interface {
	// Add сохраняет расчёт и возвращает его идентификатор.
	Add(ctx context.Context, calculation *domain.Calculation) (int64, error)

	// Query возвращает страницу расчётов пользователя,
	// отсортированных по времени создания от новых к старым.
	Query(ctx context.Context, filter domain.CalculationFilter) ([]domain.Calculation, error)

	// GetByIDs возвращает найденные расчёты любых владельцев.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Calculation, error)

	// Delete удаляет расчёты по идентификаторам. Отсутствующие id игнорируются.
	Delete(ctx context.Context, ids []int64) error

	// DeleteAllFromUser удаляет все расчёты пользователя.
	DeleteAllFromUser(ctx context.Context, userID int64) error
}
