// Package usecase содержит команды и запросы калькулятора доставки:
// расчёт, история, получение расчётов по id и очистка истории.
// Обработчики проверяют владельца и наличие расчётов, вся работа
// с хранилищем идёт через service.CalculationService.
package usecase

import (
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("calculator.usecase")

// failSpan отмечает span ошибкой и возвращает err без изменений.
func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// CalculationView — расчёт в ответе GetCalculations.
type CalculationView struct {
	ID          int64
	UserID      int64
	GoodIDs     []int64
	TotalVolume float64
	TotalWeight float64
	Price       decimal.Decimal
}
