package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"example.com/price-calculator/pkg/logger"
	"example.com/price-calculator/services/calculator/internal/domain"
	"example.com/price-calculator/services/calculator/internal/service"
)

// GetCalculationsQuery — расчёты пользователя по списку id.
type GetCalculationsQuery struct {
	UserID         int64
	CalculationIDs []int64
}

type GetCalculationsResult struct {
	Calculations []CalculationView
}

// GetCalculationsHandler возвращает расчёты по id.
type GetCalculationsHandler struct {
	service service.CalculationService
}

func NewGetCalculationsHandler(svc service.CalculationService) *GetCalculationsHandler {
	return &GetCalculationsHandler{service: svc}
}

// Handle возвращает либо все запрошенные расчёты, либо пустой результат:
// если хоть один id не найден или принадлежит другому пользователю,
// ответ пустой целиком.
func (h *GetCalculationsHandler) Handle(ctx context.Context, q GetCalculationsQuery) (GetCalculationsResult, error) {
	ctx, span := tracer.Start(ctx, "GetCalculationsHandler.Handle", trace.WithAttributes(
		attribute.Int64("user.id", q.UserID),
		attribute.Int("calculations.requested", len(q.CalculationIDs)),
	))
	defer span.End()

	empty := GetCalculationsResult{Calculations: []CalculationView{}}
	if len(q.CalculationIDs) == 0 {
		return empty, nil
	}

	calculations, err := h.service.GetCalculations(ctx, q.CalculationIDs)
	if err != nil {
		return GetCalculationsResult{}, failSpan(span, err)
	}

	log := logger.FromContext(ctx)

	if foreign := domain.ForeignOwners(q.UserID, calculations); len(foreign) > 0 {
		log.Warn().
			Int64("user_id", q.UserID).
			Ints64("wrong_user_ids", foreign).
			Msg("Запрошены чужие расчёты, ответ пустой")
		span.SetAttributes(attribute.String("result.rejected", "forbidden"))
		return empty, nil
	}

	if missing := domain.MissingIDs(q.CalculationIDs, calculations); len(missing) > 0 {
		log.Warn().
			Int64("user_id", q.UserID).
			Ints64("wrong_calculation_ids", missing).
			Msg("Часть расчётов не найдена, ответ пустой")
		span.SetAttributes(attribute.String("result.rejected", "not_found"))
		return empty, nil
	}

	views := make([]CalculationView, len(calculations))
	for i, c := range calculations {
		views[i] = CalculationView{
			ID:          c.ID,
			UserID:      c.UserID,
			GoodIDs:     c.GoodIDs,
			TotalVolume: c.TotalVolume,
			TotalWeight: c.TotalWeight,
			Price:       c.Price,
		}
	}

	return GetCalculationsResult{Calculations: views}, nil
}
