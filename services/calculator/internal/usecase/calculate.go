package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"example.com/price-calculator/services/calculator/internal/domain"
	"example.com/price-calculator/services/calculator/internal/service"
)

// CalculateCommand — запрос на расчёт стоимости набора товаров.
// Габариты и вес уже проверены транспортом.
type CalculateCommand struct {
	UserID int64
	Goods  []domain.Good
}

// CalculateResult — id сохранённого расчёта и итоговая цена.
type CalculateResult struct {
	CalculationID int64
	Price         decimal.Decimal
}

// CalculateHandler считает цену и сохраняет расчёт в историю.
type CalculateHandler struct {
	service service.CalculationService
}

func NewCalculateHandler(svc service.CalculationService) *CalculateHandler {
	return &CalculateHandler{service: svc}
}

// Handle сохраняет расчёт и возвращает цену max(по объёму, по весу).
func (h *CalculateHandler) Handle(ctx context.Context, cmd CalculateCommand) (CalculateResult, error) {
	ctx, span := tracer.Start(ctx, "CalculateHandler.Handle", trace.WithAttributes(
		attribute.Int64("user.id", cmd.UserID),
		attribute.Int("goods.count", len(cmd.Goods)),
	))
	defer span.End()

	id, err := h.service.SaveCalculation(ctx, cmd.UserID, cmd.Goods)
	if err != nil {
		return CalculateResult{}, failSpan(span, err)
	}

	byVolume, _ := h.service.CalculatePriceByVolume(cmd.Goods)
	byWeight, _ := h.service.CalculatePriceByWeight(cmd.Goods)
	price := decimal.Max(byVolume, byWeight)

	span.SetAttributes(
		attribute.Int64("calculation.id", id),
		attribute.String("calculation.price", price.String()),
	)

	return CalculateResult{CalculationID: id, Price: price}, nil
}
