package domain

import "github.com/shopspring/decimal"

// Типы доменных событий, публикуемых через outbox.
const (
	EventCalculationCreated  = "calculation.created"
	EventCalculationsDeleted = "calculations.deleted"
	EventHistoryCleared      = "history.cleared"
)

// AggregateCalculation — тип агрегата для записей outbox.
const AggregateCalculation = "calculation"

// CalculationCreated — событие сохранения нового расчёта.
type CalculationCreated struct {
	CalculationID int64           `json:"calculation_id"`
	UserID        int64           `json:"user_id"`
	GoodIDs       []int64         `json:"good_ids"`
	Price         decimal.Decimal `json:"price"`
}

// CalculationsDeleted — событие удаления расчётов по идентификаторам.
type CalculationsDeleted struct {
	CalculationIDs []int64 `json:"calculation_ids"`
}

// HistoryCleared — событие полной очистки истории пользователя.
type HistoryCleared struct {
	UserID int64 `json:"user_id"`
}
