// Package domain содержит сущности и доменные ошибки калькулятора доставки.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Good — товар с габаритами и весом.
// ID присваивается хранилищем при сохранении.
type Good struct {
	ID     int64
	UserID int64
	Height float64
	Length float64
	Width  float64
	Weight float64
}

// PriceScale — число знаков после запятой в сохраняемой цене.
// Совпадает с масштабом колонки calculations.price.
const PriceScale = 5

// Volume возвращает объём товара в decimal, без ошибок округления float64.
func (g Good) Volume() decimal.Decimal {
	return decimal.NewFromFloat(g.Height).
		Mul(decimal.NewFromFloat(g.Length)).
		Mul(decimal.NewFromFloat(g.Width))
}

// Calculation — сохранённый результат расчёта стоимости доставки.
// GoodIDs ссылаются на товары того же пользователя на момент создания,
// внешний ключ в хранилище не поддерживается.
type Calculation struct {
	ID          int64
	UserID      int64
	CreatedAt   time.Time
	TotalVolume float64
	TotalWeight float64
	Price       decimal.Decimal
	GoodIDs     []int64
}

// CalculationFilter — параметры постраничного запроса истории.
type CalculationFilter struct {
	UserID int64
	Limit  int
	Offset int
}

// UniqueIDs возвращает отсортированные идентификаторы без повторов.
func UniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// GoodIDsOf возвращает объединение GoodIDs всех расчётов.
func GoodIDsOf(calculations []Calculation) []int64 {
	var ids []int64
	for _, c := range calculations {
		ids = append(ids, c.GoodIDs...)
	}
	return UniqueIDs(ids)
}

// MissingIDs возвращает запрошенные идентификаторы, которых нет среди расчётов.
func MissingIDs(requested []int64, found []Calculation) []int64 {
	present := make(map[int64]struct{}, len(found))
	for _, c := range found {
		present[c.ID] = struct{}{}
	}

	missing := []int64{}
	for _, id := range UniqueIDs(requested) {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// ForeignOwners возвращает владельцев расчётов, отличных от userID.
func ForeignOwners(userID int64, calculations []Calculation) []int64 {
	owners := []int64{}
	for _, c := range calculations {
		if c.UserID != userID {
			owners = append(owners, c.UserID)
		}
	}
	return UniqueIDs(owners)
}
