// Package handler содержит HTTP обработчики калькулятора.
package handler

import (
	"context"

	"example.com/price-calculator/services/calculator/internal/usecase"
)

// Calculator сохраняет расчёт стоимости доставки.
type Calculator interface {
	Handle(ctx context.Context, cmd usecase.CalculateCommand) (usecase.CalculateResult, error)
}

// HistoryReader возвращает страницу истории пользователя.
type HistoryReader interface {
	Handle(ctx context.Context, q usecase.GetHistoryQuery) (usecase.GetHistoryResult, error)
}

// CalculationsReader возвращает расчёты пользователя по id.
type CalculationsReader interface {
	Handle(ctx context.Context, q usecase.GetCalculationsQuery) (usecase.GetCalculationsResult, error)
}

// HistoryCleaner удаляет расчёты пользователя.
type HistoryCleaner interface {
	Handle(ctx context.Context, cmd usecase.ClearHistoryCommand) error
}
