// Package pricing считает стоимость доставки по объёму и по весу груза.
// Функции чистые: входные данные не проверяются, это делает транспорт.
package pricing

import (
	"github.com/shopspring/decimal"

	"example.com/price-calculator/services/calculator/internal/domain"
)

// Коэффициенты перевода объёма и веса в цену по умолчанию.
var (
	VolumeToPriceRatio = decimal.RequireFromString("3.27")
	WeightToPriceRatio = decimal.RequireFromString("1.34")
)

// Quote — результат расчёта: итоговая цена и суммарные объём и вес.
type Quote struct {
	Price         decimal.Decimal
	PriceByVolume decimal.Decimal
	PriceByWeight decimal.Decimal
	Volume        float64
	Weight        float64
}

// Engine хранит коэффициенты цены.
type Engine struct {
	volumeRatio decimal.Decimal
	weightRatio decimal.Decimal
}

// NewEngine создаёт Engine с заданными коэффициентами.
func NewEngine(volumeRatio, weightRatio decimal.Decimal) Engine {
	return Engine{volumeRatio: volumeRatio, weightRatio: weightRatio}
}

// DefaultEngine возвращает Engine с коэффициентами по умолчанию.
func DefaultEngine() Engine {
	return NewEngine(VolumeToPriceRatio, WeightToPriceRatio)
}

// PriceByVolume возвращает цену по объёму и суммарный объём.
// Сумма считается в decimal, поэтому не зависит от порядка товаров.
// Цена округляется до domain.PriceScale знаков, как в хранилище.
func (e Engine) PriceByVolume(goods []domain.Good) (decimal.Decimal, float64) {
	volume := decimal.Zero
	for _, g := range goods {
		volume = volume.Add(g.Volume())
	}
	return volume.Mul(e.volumeRatio).Round(domain.PriceScale), volume.InexactFloat64()
}

// PriceByWeight возвращает цену по весу и суммарный вес.
func (e Engine) PriceByWeight(goods []domain.Good) (decimal.Decimal, float64) {
	weight := decimal.Zero
	for _, g := range goods {
		weight = weight.Add(decimal.NewFromFloat(g.Weight))
	}
	return weight.Mul(e.weightRatio).Round(domain.PriceScale), weight.InexactFloat64()
}

// Quote считает обе цены и выбирает большую.
func (e Engine) Quote(goods []domain.Good) Quote {
	byVolume, volume := e.PriceByVolume(goods)
	byWeight, weight := e.PriceByWeight(goods)

	return Quote{
		Price:         decimal.Max(byVolume, byWeight),
		PriceByVolume: byVolume,
		PriceByWeight: byWeight,
		Volume:        volume,
		Weight:        weight,
	}
}

// PriceByVolume считает цену по объёму с коэффициентом по умолчанию.
func PriceByVolume(goods []domain.Good) (decimal.Decimal, float64) {
	return DefaultEngine().PriceByVolume(goods)
}

// PriceByWeight считает цену по весу с коэффициентом по умолчанию.
func PriceByWeight(goods []domain.Good) (decimal.Decimal, float64) {
	return DefaultEngine().PriceByWeight(goods)
}
