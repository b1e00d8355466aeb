package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"example.com/price-calculator/services/calculator/internal/domain"
	"example.com/price-calculator/services/calculator/internal/service"
)

// GetHistoryQuery — страница истории: Take записей после Skip самых новых.
type GetHistoryQuery struct {
	UserID int64
	Take   int
	Skip   int
}

// HistoryItem — груз и цена одного расчёта.
type HistoryItem struct {
	Volume  float64
	Weight  float64
	GoodIDs []int64
	Price   decimal.Decimal
}

type GetHistoryResult struct {
	Items []HistoryItem
}

// GetHistoryHandler возвращает историю расчётов пользователя.
type GetHistoryHandler struct {
	service service.CalculationService
}

func NewGetHistoryHandler(svc service.CalculationService) *GetHistoryHandler {
	return &GetHistoryHandler{service: svc}
}

// Handle возвращает расчёты пользователя от новых к старым.
// Запрос всегда ограничен user_id, поэтому владельца не проверяем.
func (h *GetHistoryHandler) Handle(ctx context.Context, q GetHistoryQuery) (GetHistoryResult, error) {
	ctx, span := tracer.Start(ctx, "GetHistoryHandler.Handle", trace.WithAttributes(
		attribute.Int64("user.id", q.UserID),
		attribute.Int("page.take", q.Take),
		attribute.Int("page.skip", q.Skip),
	))
	defer span.End()

	calculations, err := h.service.QueryCalculations(ctx, domain.CalculationFilter{
		UserID: q.UserID,
		Limit:  q.Take,
		Offset: q.Skip,
	})
	if err != nil {
		return GetHistoryResult{}, failSpan(span, err)
	}

	items := make([]HistoryItem, len(calculations))
	for i, c := range calculations {
		items[i] = HistoryItem{
			Volume:  c.TotalVolume,
			Weight:  c.TotalWeight,
			GoodIDs: c.GoodIDs,
			Price:   c.Price,
		}
	}
	span.SetAttributes(attribute.Int("result.count", len(items)))

	return GetHistoryResult{Items: items}, nil
}
