package usecase

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"example.com/price-calculator/pkg/logger"
	"example.com/price-calculator/pkg/metrics"
	"example.com/price-calculator/pkg/transaction"
	"example.com/price-calculator/services/calculator/internal/domain"
	"example.com/price-calculator/services/calculator/internal/service"
)

// ClearHistoryCommand — удаление расчётов пользователя.
// Пустой CalculationIDs означает всю историю.
type ClearHistoryCommand struct {
	UserID         int64
	CalculationIDs []int64
}

// ClearHistoryHandler удаляет расчёты вместе с их товарами.
type ClearHistoryHandler struct {
	service service.CalculationService
	scope   transaction.Scope
}

func NewClearHistoryHandler(svc service.CalculationService, scope transaction.Scope) *ClearHistoryHandler {
	return &ClearHistoryHandler{service: svc, scope: scope}
}

// Handle удаляет историю в одной транзакции.
//
// Возвращает *domain.NotFoundError, если часть id не найдена, и
// *domain.ForbiddenError, если часть расчётов чужая. В обоих случаях
// ничего не удаляется. Расчёты удаляются раньше товаров.
func (h *ClearHistoryHandler) Handle(ctx context.Context, cmd ClearHistoryCommand) error {
	ctx, span := tracer.Start(ctx, "ClearHistoryHandler.Handle", trace.WithAttributes(
		attribute.Int64("user.id", cmd.UserID),
		attribute.Int("calculations.requested", len(cmd.CalculationIDs)),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	if len(cmd.CalculationIDs) == 0 {
		err := h.scope.Execute(ctx, func(ctx context.Context) error {
			if err := h.service.DeleteAllCalculationsFromUser(ctx, cmd.UserID); err != nil {
				return err
			}
			return h.service.DeleteAllGoodsFromUser(ctx, cmd.UserID)
		})
		if err != nil {
			return failSpan(span, err)
		}

		metrics.HistoryCleared.WithLabelValues("all").Inc()
		log.Info().Int64("user_id", cmd.UserID).Msg("История расчётов очищена полностью")
		return nil
	}

	var goodIDs []int64
	err := h.scope.Execute(ctx, func(ctx context.Context) error {
		calculations, err := h.service.GetCalculations(ctx, cmd.CalculationIDs)
		if err != nil {
			return err
		}

		if missing := domain.MissingIDs(cmd.CalculationIDs, calculations); len(missing) > 0 {
			return &domain.NotFoundError{IDs: missing}
		}
		if foreign := domain.ForeignOwners(cmd.UserID, calculations); len(foreign) > 0 {
			return &domain.ForbiddenError{UserID: cmd.UserID, OwnerIDs: foreign}
		}

		goodIDs = domain.GoodIDsOf(calculations)

		if err := h.service.DeleteCalculations(ctx, domain.UniqueIDs(cmd.CalculationIDs)); err != nil {
			return err
		}
		return h.service.DeleteGoods(ctx, goodIDs)
	})
	if err != nil {
		h.logRejection(ctx, cmd, err)
		return failSpan(span, err)
	}

	metrics.HistoryCleared.WithLabelValues("selected").Inc()
	log.Info().
		Int64("user_id", cmd.UserID).
		Ints64("calculation_ids", cmd.CalculationIDs).
		Int("goods_deleted", len(goodIDs)).
		Msg("Расчёты удалены из истории")

	return nil
}

func (h *ClearHistoryHandler) logRejection(ctx context.Context, cmd ClearHistoryCommand, err error) {
	log := logger.FromContext(ctx)

	var notFound *domain.NotFoundError
	var forbidden *domain.ForbiddenError

	switch {
	case errors.As(err, &notFound):
		metrics.ClearHistoryRejected.WithLabelValues("not_found").Inc()
		log.Warn().
			Int64("user_id", cmd.UserID).
			Ints64("wrong_calculation_ids", notFound.IDs).
			Msg("Очистка отклонена: расчёты не найдены")
	case errors.As(err, &forbidden):
		metrics.ClearHistoryRejected.WithLabelValues("forbidden").Inc()
		log.Warn().
			Int64("user_id", cmd.UserID).
			Ints64("wrong_user_ids", forbidden.OwnerIDs).
			Msg("Очистка отклонена: расчёты принадлежат другому пользователю")
	}
}

